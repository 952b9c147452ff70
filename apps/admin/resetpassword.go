package main

import (
	"context"

	"github.com/ifcet/aula/core/student"
)

func (cli *commandLine) resetPassword(uname, pwd string) error {
	rp := student.ResetPassword{Username: uname, Password: pwd, PasswordConfirm: pwd}
	if err := rp.Validate(); err != nil {
		return err
	}
	_, err := cli.stSvc.ResetPassword(context.Background(), rp)
	return err
}
