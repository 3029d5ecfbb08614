package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/pohlang/plhub/internal/config"
	"github.com/pohlang/plhub/internal/errors"
	"github.com/pohlang/plhub/internal/templates"
)

func createCmd() *cobra.Command {
	var (
		template    string
		description string
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new PohLang project",
		Long: `Create a new PohLang project with the specified name.

Templates:
  basic     Simple console application (default)
  console   Console application with input and loops
  web       Web application starter (experimental)

Examples:
  plhub create my-app
  plhub create my-app --template=console`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(args[0], template, description)
		},
	}

	cmd.Flags().StringVarP(&template, "template", "t", "basic", "Project template (basic, console, web)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Project description")

	return cmd
}

var projectNameRe = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

func runCreate(name, templateName, description string) error {
	printBanner()
	fmt.Println("  Creating a new PohLang project...")
	fmt.Println()

	if !projectNameRe.MatchString(name) {
		return errors.New("E303").
			WithDetail("'" + name + "' is not a valid project name")
	}

	projectDir, err := filepath.Abs(name)
	if err != nil {
		return err
	}
	if _, err := os.Stat(projectDir); !os.IsNotExist(err) {
		return errors.New("E304").
			WithDetail("Directory '" + name + "' already exists")
	}

	tmpl, err := templates.Get(templateName)
	if err != nil {
		return err
	}

	if description == "" {
		description = "A PohLang project"
	}

	info("Creating project from '%s' template...", templateName)
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		return err
	}
	if err := tmpl.Create(projectDir, templates.Config{
		ProjectName: name,
		Description: description,
	}); err != nil {
		os.RemoveAll(projectDir)
		return err
	}

	cfg := config.New()
	cfg.Name = name
	cfg.Version = "0.1.0"
	if err := cfg.SaveTo(filepath.Join(projectDir, config.ConfigFileName)); err != nil {
		os.RemoveAll(projectDir)
		return err
	}

	fmt.Println()
	success("Project '%s' created", name)
	fmt.Println()
	fmt.Println("  Next steps:")
	info("cd %s", name)
	info("plhub dev")
	fmt.Println()

	return nil
}
