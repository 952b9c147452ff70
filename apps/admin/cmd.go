package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/ifcet/aula/core/course"
	"github.com/ifcet/aula/core/student"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db       *sql.DB
	stRepo   student.Repository
	crRepo   course.Repository
	stSvc    *student.Service
	fixtures string // default fixtures dir
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run a goose command (up, down, status, ...) over the migrations")
	fmt.Println("  seed [-dir DIR] - load the Aula Virtual fixtures into the database")
	fmt.Println("  addstudent -username USERNAME -name NAME -courses 1,2 [-email EMAIL] - enroll a student")
	fmt.Println("  resetpassword -username USERNAME - reset a student's password")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	seedCmd := flag.NewFlagSet("seed", flag.ExitOnError)
	seedDir := seedCmd.String("dir", cli.fixtures, "Directory overriding the embedded fixtures.")

	addStudentCmd := flag.NewFlagSet("addstudent", flag.ExitOnError)
	addStudentUname := addStudentCmd.String("username", "", "The student's username. The password will be prompted next.")
	addStudentName := addStudentCmd.String("name", "", "The student's full name.")
	addStudentEmail := addStudentCmd.String("email", "", "The student's email.")
	addStudentCourses := addStudentCmd.String("courses", "", "Comma separated ids of the courses the student may access.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The student's username. The password will be prompted next.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "seed":
		if err := seedCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.seed(*seedDir)
	case "addstudent":
		if err := addStudentCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addStudentUname == "" || *addStudentName == "" || *addStudentCourses == "" {
			addStudentCmd.Usage()
			return errHelp
		}
		ids, err := parseCourseIDs(*addStudentCourses)
		if err != nil {
			return err
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addStudentCmd.Usage()
			return errHelp
		}
		return cli.addStudent(student.NewStudent{
			FullName:        *addStudentName,
			Username:        *addStudentUname,
			Email:           *addStudentEmail,
			CourseIDs:       ids,
			Password:        pwd,
			PasswordConfirm: pwd,
		})
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordUname, pwd)
	default:
		cli.printUsage()
		return errHelp
	}
}

func promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

func parseCourseIDs(raw string) ([]int, error) {
	var ids []int
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid course id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
