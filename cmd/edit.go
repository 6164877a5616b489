package cmd

import (
	"bytes"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shouni/gemini-image-editor/pkg/crop"
	"github.com/shouni/gemini-image-editor/pkg/domain"
	"github.com/shouni/gemini-image-editor/pkg/editor"
	"github.com/spf13/cobra"
)

type editOptions struct {
	source string
	prompt string
	preset string
	aspect string
	seed   int64
	crop   string
	output string
}

var editOpts editOptions

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "元画像を 1 回だけ編集して結果を書き出します",
	Long: `元画像（ローカルパス、gs://、s3://、http(s)://）を読み込み、必要なら切り抜いてから
指示文またはプリセットで編集し、結果を --output に書き出します。`,
	RunE: runEdit,
}

func init() {
	f := editCmd.Flags()
	f.StringVarP(&editOpts.source, "source", "s", "", "元画像の URI")
	f.StringVarP(&editOpts.prompt, "prompt", "p", "", "編集指示")
	f.StringVar(&editOpts.preset, "preset", "", "プリセットのキーまたはラベル (--prompt より優先)")
	f.StringVar(&editOpts.aspect, "aspect", "", "出力のアスペクト比 (1:1, 3:4, 4:3, 9:16, 16:9)")
	f.Int64Var(&editOpts.seed, "seed", 0, "生成シード")
	f.StringVar(&editOpts.crop, "crop", "", "編集前に切り抜く範囲 (百分率で x,y,width,height)")
	f.StringVarP(&editOpts.output, "output", "o", "", "結果の書き出し先 URI")
	_ = editCmd.MarkFlagRequired("source")
	_ = editCmd.MarkFlagRequired("output")
}

func runEdit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var region *crop.Region
	if editOpts.crop != "" {
		r, err := parseRegion(editOpts.crop)
		if err != nil {
			return err
		}
		region = &r
	}

	deps, err := buildDeps(ctx, appConfig)
	if err != nil {
		return err
	}
	defer deps.close()

	sess, err := editor.NewSession("cli", deps.editor, editor.WithAspectRatio(appConfig.DefaultAspectRatio()))
	if err != nil {
		return err
	}

	src, err := deps.loader.LoadSource(ctx, editOpts.source)
	if err != nil {
		return err
	}
	if err := sess.SetSource(src); err != nil {
		return err
	}
	if region != nil {
		if _, err := sess.ApplyCrop(ctx, *region); err != nil {
			return err
		}
	}

	if editOpts.preset != "" {
		if _, err := sess.ApplyPreset(editOpts.preset); err != nil {
			return err
		}
	} else {
		sess.SetPrompt(editOpts.prompt)
	}
	if editOpts.aspect != "" {
		if err := sess.SetAspectRatio(editOpts.aspect); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("seed") {
		seed := editOpts.seed
		sess.SetSeed(&seed)
	}

	entry, err := sess.Generate(ctx)
	if err != nil {
		return err
	}

	img := entry.Image
	if err := deps.writer.Write(ctx, editOpts.output, bytes.NewReader(img.Data), img.MimeType); err != nil {
		return fmt.Errorf("生成結果の書き出しに失敗しました (%s): %w", editOpts.output, err)
	}
	slog.Info("画像を編集しました",
		"output", editOpts.output,
		"mime", img.MimeType,
		"bytes", len(img.Data),
		"seed", img.UsedSeed,
	)
	return nil
}

// parseRegion は "x,y,width,height"（百分率）を切り抜き範囲に変換します。
func parseRegion(s string) (crop.Region, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return crop.Region{}, &domain.InputError{Field: "crop", Reason: fmt.Sprintf("x,y,width,height の形式で指定してください: %q", s)}
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return crop.Region{}, &domain.InputError{Field: "crop", Reason: fmt.Sprintf("数値ではありません: %q", p)}
		}
		v[i] = f
	}
	r := crop.Region{X: v[0], Y: v[1], Width: v[2], Height: v[3]}
	if err := r.Validate(); err != nil {
		return crop.Region{}, &domain.InputError{Field: "crop", Reason: err.Error()}
	}
	return r, nil
}
