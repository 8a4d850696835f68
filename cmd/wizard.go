package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kiassist/kiassist/internal/app"
	"github.com/kiassist/kiassist/internal/project"
	"github.com/kiassist/kiassist/internal/wizard"
)

var (
	wizardJSON    bool
	wizardAnswers string
	wizardModel   string
	wizardName    string
	wizardForce   bool
	wizardDryRun  bool
)

var wizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Requirements wizard",
	Long: `Interview the user about a PCB project and have Gemini write
requirements.md and todo.md into the project directory.`,
}

var wizardQuestionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Print the default question catalogue",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		qs := a.WizardQuestions()
		if wizardJSON {
			return printJSON(os.Stdout, qs)
		}
		for _, q := range qs {
			fmt.Printf("%-20s [%s] %s\n", q.ID, q.Category, q.Question)
		}
		return nil
	},
}

var wizardCheckCmd = &cobra.Command{
	Use:   "check <project>",
	Short: "Report whether requirements.md and todo.md exist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		st := a.CheckRequirements(projectDir(args[0]))
		if wizardJSON {
			return printJSON(os.Stdout, st)
		}
		if err := resultErr(st.Result); err != nil {
			return err
		}
		fmt.Printf("%s: %s\n", wizard.RequirementsFile, presence(st.RequirementsExists))
		fmt.Printf("%s: %s\n", wizard.TodoFile, presence(st.TodoExists))
		return nil
	},
}

var wizardShowCmd = &cobra.Command{
	Use:   "show <project>",
	Short: "Print requirements.md",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		res := a.GetRequirements(projectDir(args[0]))
		if err := resultErr(res.Result); err != nil {
			return err
		}
		fmt.Print(res.Content)
		return nil
	},
}

var wizardRunCmd = &cobra.Command{
	Use:   "run <project>",
	Short: "Run the wizard for a project",
	Long: `Ask the two opening questions, let Gemini tailor the rest, ask those, then
write requirements.md and todo.md next to the .kicad_pro file.

Answers can be pre-filled from a YAML file mapping question id to answer;
pre-filled questions are not asked.

Examples:
  kiassist wizard run ~/kicad/amp
  kiassist wizard run ~/kicad/amp --answers answers.yaml --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runWizard,
}

func init() {
	rootCmd.AddCommand(wizardCmd)
	wizardCmd.AddCommand(wizardQuestionsCmd)
	wizardCmd.AddCommand(wizardCheckCmd)
	wizardCmd.AddCommand(wizardShowCmd)
	wizardCmd.AddCommand(wizardRunCmd)

	wizardQuestionsCmd.Flags().BoolVar(&wizardJSON, "json", false, "output JSON")
	wizardCheckCmd.Flags().BoolVar(&wizardJSON, "json", false, "output JSON")

	wizardRunCmd.Flags().StringVar(&wizardAnswers, "answers", "", "YAML file of pre-filled answers")
	wizardRunCmd.Flags().StringVarP(&wizardModel, "model", "m", "", "model alias")
	wizardRunCmd.Flags().StringVar(&wizardName, "name", "", "project name used in the documents")
	wizardRunCmd.Flags().BoolVar(&wizardForce, "force", false, "overwrite an existing requirements.md")
	wizardRunCmd.Flags().BoolVar(&wizardDryRun, "dry-run", false, "print the documents instead of saving them")
}

func runWizard(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	v := a.ValidateProject(args[0])
	if !v.Valid {
		return errors.New(v.Error)
	}
	info := v.Info
	name := wizardName
	if name == "" {
		name = info.ProjectName
	}

	st := a.CheckRequirements(info.ProjectDir)
	if err := resultErr(st.Result); err != nil {
		return err
	}
	if st.RequirementsExists && !wizardForce && !wizardDryRun {
		return fmt.Errorf("%s already exists; use --force to overwrite", st.RequirementsPath)
	}

	answers := map[string]string{}
	if wizardAnswers != "" {
		if answers, err = wizard.LoadAnswers(wizardAnswers); err != nil {
			return err
		}
	}

	in, out := bufio.NewReader(cmd.InOrStdin()), cmd.ErrOrStderr()
	if answers, err = wizard.Interview(in, out, wizard.InitialQuestions(), answers); err != nil {
		return err
	}

	fmt.Fprintln(out, "\nTailoring follow-up questions...")
	refined := a.RefineQuestions(cmd.Context(), answers, wizardModel)
	if err := resultErr(refined.Result); err != nil {
		return err
	}
	if answers, err = wizard.Interview(in, out, refined.Questions, answers); err != nil {
		return err
	}

	questions := append(wizard.InitialQuestions(), refined.Questions...)
	fmt.Fprintln(out, "\nWriting requirements...")
	docs := a.SynthesizeRequirements(cmd.Context(), questions, answers, name, wizardModel)
	if err := resultErr(docs.Result); err != nil {
		return err
	}

	if wizardDryRun {
		printDocs(docs)
		return nil
	}

	saved := a.SaveRequirements(info.ProjectDir, docs.Requirements, docs.Todo)
	if err := resultErr(saved.Result); err != nil {
		return err
	}
	for _, f := range saved.SavedFiles {
		fmt.Printf("Saved %s\n", f)
	}
	return nil
}

func printDocs(docs app.DocumentsResult) {
	fmt.Printf("--- %s ---\n%s\n", wizard.RequirementsFile, docs.Requirements)
	if docs.Todo != "" {
		fmt.Printf("--- %s ---\n%s\n", wizard.TodoFile, docs.Todo)
	}
}

func presence(exists bool) string {
	if exists {
		return "present"
	}
	return "missing"
}

// projectDir resolves a project file or directory to its directory.
func projectDir(path string) string {
	dir, _ := project.Resolve(path)
	return dir
}
