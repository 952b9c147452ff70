package main

import (
	"github.com/ifcet/aula/storage/database"
)

func (cli *commandLine) migrate(args []string) error {
	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return database.GooseRunFunc(args[0], cli.db, arguments...)
}
