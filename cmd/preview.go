package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/worksheet/internal/ui/preview"
	"github.com/abhisek/worksheet/internal/worksheet"
)

var previewCmd = &cobra.Command{
	Use:   "preview [math|hanja|english]",
	Short: "Preview a worksheet interactively in the terminal",
	Long: `Generate a worksheet and browse it in a full-screen terminal view.

Keys: a toggles the answer key, r regenerates, c changes the problem count,
f switches the math layout, s saves to history, q quits.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"math", "hanja", "english"},
	RunE:      runPreview,
}

func init() {
	fs := previewCmd.Flags()
	fs.IntP("count", "n", 0, "Number of problems (default from config)")
	fs.String("digits", "", "Math digit mode: 1x1, 1x2, 2x2, 2x3, 3x3")
	fs.String("op", "", "Math operation: addition, subtraction, multiplication, mixed")
	fs.String("format", "", "Math layout: horizontal or vertical")
	fs.String("grade", "", "Hanja grade (8, 7, 6) or English grade (2, 3)")
	fs.String("type", "", "Exercise type for hanja or english")
}

func runPreview(cmd *cobra.Command, args []string) error {
	subject := worksheet.Math
	if len(args) == 1 {
		s, err := worksheet.ParseSubject(args[0])
		if err != nil {
			return err
		}
		subject = s
	}

	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}

	req := preview.Request{
		Subject: subject,
		Math:    e.cfg.Defaults.Math,
		Hanja:   e.cfg.Defaults.Hanja,
		English: e.cfg.Defaults.English,
	}
	switch subject {
	case worksheet.Hanja:
		req.Hanja, err = hanjaSettings(cmd, req.Hanja)
	case worksheet.English:
		req.English, err = englishSettings(cmd, req.English)
	default:
		req.Math, err = mathSettings(cmd, req.Math)
	}
	if err != nil {
		return err
	}

	st, err := e.openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	return preview.Run(e.newService(cmd.Context(), st.EventRepo()), st.WorksheetRepo(), req)
}
