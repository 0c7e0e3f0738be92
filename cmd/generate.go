package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/abhisek/worksheet/internal/arith"
	"github.com/abhisek/worksheet/internal/render"
	"github.com/abhisek/worksheet/internal/store"
	"github.com/abhisek/worksheet/internal/worksheet"
)

var mathCmd = &cobra.Command{
	Use:   "math",
	Short: "Generate an arithmetic worksheet",
	Long: `Generate an arithmetic drill worksheet.

With an LLM provider configured the problems are requested from the model
and checked; any failure falls back to the local generator. --local skips
the model entirely.`,
	Args: cobra.NoArgs,
	RunE: runMath,
}

var hanjaCmd = &cobra.Command{
	Use:     "hanja",
	Aliases: []string{"chinese"},
	Short:   "Generate a Hanja (Chinese character) worksheet",
	Args:    cobra.NoArgs,
	RunE:    runHanja,
}

var englishCmd = &cobra.Command{
	Use:   "english",
	Short: "Generate an English worksheet",
	Args:  cobra.NoArgs,
	RunE:  runEnglish,
}

func init() {
	mathCmd.Flags().String("digits", "", "Digit mode: 1x1, 1x2, 2x2, 2x3, 3x3")
	mathCmd.Flags().String("op", "", "Operation: addition, subtraction, multiplication, mixed")
	mathCmd.Flags().String("format", "", "Layout: horizontal or vertical")
	mathCmd.Flags().Bool("local", false, "Use the local generator only")

	hanjaCmd.Flags().String("grade", "", "Hanja proficiency grade: 8, 7 or 6")
	hanjaCmd.Flags().String("type", "", "multiple_choice, short_answer or writing_practice")

	englishCmd.Flags().String("grade", "", "School grade: 2 or 3")
	englishCmd.Flags().String("type", "", "vocabulary, sentence_completion or translation")

	for _, c := range []*cobra.Command{mathCmd, hanjaCmd, englishCmd} {
		addOutputFlags(c.Flags())
		c.Flags().IntP("count", "n", 0, "Number of problems (default from config)")
		c.Flags().Bool("save", false, "Save the worksheet to the history database")
	}
}

func addOutputFlags(fs *pflag.FlagSet) {
	fs.BoolP("answers", "a", false, "Append the answer key")
	fs.Bool("json", false, "Write JSON instead of the printable sheet")
	fs.StringP("out", "o", "", "Write to a file instead of stdout")
	fs.Bool("no-color", false, "Disable colors")
}

// mathSettings overlays the flags that were set on the configured defaults.
func mathSettings(cmd *cobra.Command, s worksheet.MathSettings) (worksheet.MathSettings, error) {
	fs := cmd.Flags()
	if fs.Changed("count") {
		s.Count, _ = fs.GetInt("count")
	}
	if v, _ := fs.GetString("digits"); v != "" {
		d, err := arith.ParseDigitMode(v)
		if err != nil {
			return s, err
		}
		s.Digits = d
	}
	if v, _ := fs.GetString("op"); v != "" {
		op, err := arith.ParseOperation(v)
		if err != nil {
			return s, err
		}
		s.Operation = op
	}
	if v, _ := fs.GetString("format"); v != "" {
		f, err := worksheet.ParseFormat(v)
		if err != nil {
			return s, err
		}
		s.Format = f
	}
	return s, s.Validate()
}

func hanjaSettings(cmd *cobra.Command, s worksheet.HanjaSettings) (worksheet.HanjaSettings, error) {
	fs := cmd.Flags()
	if fs.Changed("count") {
		s.Count, _ = fs.GetInt("count")
	}
	if v, _ := fs.GetString("grade"); v != "" {
		g, err := worksheet.ParseHanjaGrade(v)
		if err != nil {
			return s, err
		}
		s.Grade = g
	}
	if v, _ := fs.GetString("type"); v != "" {
		t, err := worksheet.ParseHanjaType(v)
		if err != nil {
			return s, err
		}
		s.Type = t
	}
	return s, s.Validate()
}

func englishSettings(cmd *cobra.Command, s worksheet.EnglishSettings) (worksheet.EnglishSettings, error) {
	fs := cmd.Flags()
	if fs.Changed("count") {
		s.Count, _ = fs.GetInt("count")
	}
	if v, _ := fs.GetString("grade"); v != "" {
		g, err := worksheet.ParseEnglishGrade(v)
		if err != nil {
			return s, err
		}
		s.Grade = g
	}
	if v, _ := fs.GetString("type"); v != "" {
		t, err := worksheet.ParseEnglishType(v)
		if err != nil {
			return s, err
		}
		s.Type = t
	}
	return s, s.Validate()
}

func runMath(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	settings, err := mathSettings(cmd, e.cfg.Defaults.Math)
	if err != nil {
		return err
	}
	st, err := e.openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	svc := e.newService(cmd.Context(), st.EventRepo())
	var sheet *worksheet.Worksheet
	if local, _ := cmd.Flags().GetBool("local"); local {
		sheet, err = svc.LocalMath(settings)
	} else {
		sheet, err = svc.GenerateMath(cmd.Context(), settings)
	}
	if err != nil {
		return err
	}
	return finish(cmd, st.WorksheetRepo(), sheet)
}

func runHanja(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	settings, err := hanjaSettings(cmd, e.cfg.Defaults.Hanja)
	if err != nil {
		return err
	}
	st, err := e.openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	sheet, err := e.newService(cmd.Context(), st.EventRepo()).GenerateHanja(cmd.Context(), settings)
	if err != nil {
		return err
	}
	return finish(cmd, st.WorksheetRepo(), sheet)
}

func runEnglish(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	settings, err := englishSettings(cmd, e.cfg.Defaults.English)
	if err != nil {
		return err
	}
	st, err := e.openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	sheet, err := e.newService(cmd.Context(), st.EventRepo()).GenerateEnglish(cmd.Context(), settings)
	if err != nil {
		return err
	}
	return finish(cmd, st.WorksheetRepo(), sheet)
}

// finish saves the sheet when --save is set and writes it out.
func finish(cmd *cobra.Command, repo store.WorksheetRepo, sheet *worksheet.Worksheet) error {
	if save, _ := cmd.Flags().GetBool("save"); save {
		if err := repo.Save(cmd.Context(), sheet); err != nil {
			return fmt.Errorf("save worksheet: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "saved %s\n", sheet.ID)
	}
	return output(cmd, sheet)
}

// output writes sheet according to the output flags.
func output(cmd *cobra.Command, sheet *worksheet.Worksheet) error {
	fs := cmd.Flags()
	asJSON, _ := fs.GetBool("json")
	answers, _ := fs.GetBool("answers")
	noColor, _ := fs.GetBool("no-color")
	path, _ := fs.GetString("out")

	write := func(w io.Writer, color bool) error {
		if asJSON {
			return render.JSON(w, sheet)
		}
		return render.Text(w, sheet, render.Options{AnswerKey: answers, Color: color, Width: render.DefaultWidth})
	}

	if path == "" {
		w := cmd.OutOrStdout()
		return write(w, !noColor && isTerminal(w))
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	return closeAfter(f, func(w io.Writer) error { return write(w, false) })
}

// closeAfter runs write against wc and closes it. A close failure is
// returned when the write itself succeeded.
func closeAfter(wc io.WriteCloser, write func(io.Writer) error) error {
	err := write(wc)
	if cerr := wc.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close output: %w", cerr)
	}
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
