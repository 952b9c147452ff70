package main

import (
	"context"
	"fmt"

	"github.com/ifcet/aula/storage/fixtures"
)

// seed saves the fixture courses and creates the missing student accounts.
func (cli *commandLine) seed(dir string) error {
	set, err := fixtures.Load(dir)
	if err != nil {
		return err
	}
	n, err := fixtures.Seed(context.Background(), set.Aula, cli.stRepo, cli.crRepo)
	if err != nil {
		return err
	}
	fmt.Printf("%d courses saved, %d students created\n", len(set.Aula.Courses), n)
	return nil
}
