package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/forestguardian/forest-guardian/internal/analysis"
	"github.com/forestguardian/forest-guardian/internal/format"
	"github.com/forestguardian/forest-guardian/internal/model"
)

type analyzeOutput struct {
	Record *model.DetectionRecord `json:"record,omitempty"`
	Result *analysis.Result       `json:"result"`
	Saved  bool                   `json:"saved"`
}

func newAnalyzeCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <photo>",
		Short: "Analyse a photo and save the finding to history",
		Long: `Copy the photo into the image store, run the detection model on it and
append the result to the history. The mode defaults to the tree type's
preferred mode.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, o, args[0])
		},
	}

	cmd.Flags().StringP("tree", "t", "", "Tree type: spruce, pine, oak, unknown (default from config)")
	cmd.Flags().StringP("mode", "m", "", "Detection mode: object_detection or segmentation")
	cmd.Flags().Bool("no-save", false, "Analyse only, do not store the image or record")

	return cmd
}

func runAnalyze(cmd *cobra.Command, o *options, photo string) error {
	treeID, _ := cmd.Flags().GetString("tree")
	modeStr, _ := cmd.Flags().GetString("mode")
	noSave, _ := cmd.Flags().GetBool("no-save")
	ctx := cmd.Context()

	if treeID == "" {
		treeID = o.cfg.DefaultTree
	}
	tree, ok := analysis.LookupTreeType(treeID)
	if !ok {
		return fmt.Errorf("unknown tree type %q (see: forest-guardian trees)", treeID)
	}
	mode := tree.DefaultMode
	if modeStr != "" {
		m, err := analysis.ParseMode(modeStr)
		if err != nil {
			return err
		}
		mode = m
	}

	a, err := o.openApp()
	if err != nil {
		return wrapErr("open store", err)
	}
	defer a.Close()

	if noSave {
		res, err := a.analyzer.Analyze(ctx, photo, mode, tree.ID)
		if err != nil {
			return wrapErr("analyze", err)
		}
		return printAnalysis(cmd, o, a, &analyzeOutput{Result: res})
	}

	imagePath, err := a.images.Save(ctx, photo)
	if err != nil {
		return wrapErr("save image", err)
	}

	res, err := a.analyzer.Analyze(ctx, imagePath, mode, tree.ID)
	if err != nil {
		a.discardImage(cmd, o, imagePath)
		return wrapErr("analyze", err)
	}

	rec, err := a.records.Append(ctx, res.ToAppend(imagePath))
	if err != nil {
		a.discardImage(cmd, o, imagePath)
		return wrapErr("save record", err)
	}

	o.log.Info("analysis saved",
		zap.String("id", rec.ID),
		zap.String("label", rec.Label),
		zap.Float64("confidence", rec.Confidence))

	return printAnalysis(cmd, o, a, &analyzeOutput{Record: rec, Result: res, Saved: true})
}

// discardImage removes an image whose record was never stored.
func (a *app) discardImage(cmd *cobra.Command, o *options, path string) {
	if err := a.images.Delete(cmd.Context(), path); err != nil {
		o.log.Warn("orphaned image left behind", zap.String("path", path), zap.Error(err))
	}
}

func printAnalysis(cmd *cobra.Command, o *options, a *app, out *analyzeOutput) error {
	if !o.text() {
		return printJSON(cmd.OutOrStdout(), out)
	}
	w := cmd.OutOrStdout()
	r := out.Result
	fmt.Fprintf(w, "%s (%s, %s)\n", r.Label, format.Confidence(r.Confidence), format.SeverityLabel(r.Severity))
	fmt.Fprintf(w, "Recommendation: %s\n", r.Recommendation)
	if out.Record != nil {
		fmt.Fprintf(w, "Saved as %s on %s\n", out.Record.ID, format.Date(out.Record.Date, a.loc))
	}
	return nil
}
