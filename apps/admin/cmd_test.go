package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ifcet/aula/core/course"
	"github.com/ifcet/aula/core/student"
	"github.com/ifcet/aula/storage/database"
	"github.com/ifcet/aula/storage/database/inmem"
)

func setup(t *testing.T) *commandLine {
	db := inmemdb.Open()
	stRepo := inmemdb.NewStudentRepository(db)
	crRepo := inmemdb.NewCourseRepository(db)
	for _, c := range []course.Course{{ID: 1, Name: "Peritaje"}, {ID: 2, Name: "Costos"}} {
		_, err := crRepo.SaveCourse(context.Background(), c)
		require.NoError(t, err)
	}

	// start CLI
	return &commandLine{
		stRepo: stRepo,
		crRepo: crRepo,
		stSvc:  student.NewService(stRepo),
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func checkErr(t *testing.T, tt cliTest, err error) {
	if err == nil {
		if tt.wantErr != nil || tt.wantErrStr != "" {
			t.Errorf("cli.run() error = nil, wantErr %v %s", tt.wantErr, tt.wantErrStr)
		}
		return
	}
	if tt.wantErr != nil {
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
		}
	} else if tt.wantErrStr != "" {
		if !strings.Contains(err.Error(), tt.wantErrStr) {
			t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
		}
	} else {
		t.Errorf("cli.run() unexpected error = %v", err)
	}
}

func mockPassword(pwd string) {
	readPasswordFunc = func(fd int) ([]byte, error) {
		return []byte(pwd), nil
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	orig := database.GooseRunFunc
	defer func() { database.GooseRunFunc = orig }()
	database.GooseRunFunc = func(command string, db *sql.DB, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "add_course_notes", "sql"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(args))
		})
	}
}

func Test_commandLine_seed(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	require.NoError(t, cli.run([]string{"admin", "seed"}))

	students, err := cli.stRepo.QueryAllStudents(ctx)
	require.NoError(t, err)
	assert.Len(t, students, 3)
	courses, err := cli.crRepo.QueryCourses(ctx)
	require.NoError(t, err)
	assert.Len(t, courses, 4)

	// seeding twice keeps the accounts
	require.NoError(t, cli.run([]string{"admin", "seed"}))
	students, err = cli.stRepo.QueryAllStudents(ctx)
	require.NoError(t, err)
	assert.Len(t, students, 3)
}

func Test_commandLine_addStudent(t *testing.T) {
	cli := setup(t)

	type extra struct {
		pwd string
	}
	base := []string{"addstudent", "-username", "Maria.Quispe", "-name", "María Quispe", "-email", "maria@example.com"}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "missing flags", args: []string{"addstudent", "-username", "maria"}, wantErr: errHelp},
		{name: "bad course id", args: append(base, "-courses", "1,x"), wantErrStr: `invalid course id "x"`},
		{name: "no password", args: append(base, "-courses", "1"), wantErr: errHelp},
		{name: "unknown course", args: append(base, "-courses", "1,9"), extra: extra{pwd: "Balance#2025"}, wantErr: course.ErrNotFound},
		{name: "weak password", args: append(base, "-courses", "1"), extra: extra{pwd: "12345678"}, wantErrStr: "pwdnotallnum"},
		{name: "created", args: append(base, "-courses", "1, 2"), extra: extra{pwd: "Balance#2025"}},
		{name: "username taken", args: append(base, "-courses", "1"), extra: extra{pwd: "Balance#2025"}, wantErr: student.ErrUsernameExists},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		pwd := ""
		if e, ok := tt.extra.(extra); ok {
			pwd = e.pwd
		}
		mockPassword(pwd)

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(args))
		})
	}

	st, err := cli.stSvc.GetByUsername(context.Background(), "maria.quispe")
	require.NoError(t, err)
	assert.Equal(t, "María Quispe", st.FullName)
	assert.Equal(t, []int{1, 2}, st.CourseIDs)
	assert.NoError(t, st.CheckPassword("Balance#2025"))
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	usr, err := cli.stSvc.Create(context.Background(), student.NewStudent{
		FullName:  "Jorge Paredes",
		Username:  "jorge.paredes",
		CourseIDs: []int{2},
		Password:  "Costeo#ABC1",
	})
	require.NoError(t, err)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "jorge.paredes"}, wantErr: errHelp},
		{name: "student not found", args: []string{"resetpassword", "-username", "lol"}, extra: extra{pwd: "Presupuesto#9"}, wantErr: student.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-username", "Jorge.Paredes"}, extra: extra{pwd: "Presupuesto#9"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		pwd := ""
		if e, ok := tt.extra.(extra); ok {
			pwd = e.pwd
		}
		mockPassword(pwd)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			checkErr(t, tt, err)
			if err == nil {
				refreshed, err := cli.stRepo.GetStudentByID(context.Background(), usr.ID)
				if err != nil {
					t.Fatalf("GetStudentByID() failed, %v", err)
				}
				if bytes.Equal(refreshed.PasswordHash, usr.PasswordHash) {
					t.Error("failed to update new password")
				}
			}
		})
	}
}
