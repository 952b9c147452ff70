package main

import (
	"context"
	"fmt"

	"github.com/ifcet/aula/core/student"
)

// addStudent enrolls a new student after checking their courses exist.
func (cli *commandLine) addStudent(ns student.NewStudent) error {
	if err := ns.Validate(); err != nil {
		return err
	}

	ctx := context.Background()
	for _, id := range ns.CourseIDs {
		if _, err := cli.crRepo.GetCourseByID(ctx, id); err != nil {
			return fmt.Errorf("course %d: %w", id, err)
		}
	}

	st, err := cli.stSvc.Create(ctx, ns)
	if err != nil {
		return err
	}
	fmt.Printf("student %q created with id %d\n", st.Username, st.ID)
	return nil
}
