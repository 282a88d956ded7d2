package cli

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/cristianadrielbraun/avatarstudio/internal/apperr"
	"github.com/cristianadrielbraun/avatarstudio/internal/compose"
	"github.com/cristianadrielbraun/avatarstudio/internal/gemini"
	"github.com/cristianadrielbraun/avatarstudio/internal/imagedata"
	"github.com/cristianadrielbraun/avatarstudio/internal/palette"
	"github.com/cristianadrielbraun/avatarstudio/internal/studio"
)

func (a *App) newGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <photo>",
		Short: "Restyle a photo and export the framed avatar",
		Long: `Restyle a photo through Gemini and export the framed 1080x1080 avatar.

Examples:
  avatarctl generate me.jpg
  avatarctl generate me.jpg --background sunset --out avatar.png
  avatarctl generate me.jpg --keep-original --out - > avatar.png`,
		Args: cobra.ExactArgs(1),
		RunE: a.runGenerate,
	}
	cmd.Flags().StringVar(&a.genBackground, "background", palette.Default().ID, "background ID (see avatarctl backgrounds)")
	cmd.Flags().StringVar(&a.genPrompt, "prompt", "", "styling prompt (default from config)")
	cmd.Flags().StringVarP(&a.genOut, "out", "o", compose.Filename, `output file, or "-" for stdout`)
	cmd.Flags().BoolVar(&a.genKeepOriginal, "keep-original", false, "frame the original photo if generation fails")
	return cmd
}

func (a *App) runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if a.genOut == "-" && a.isTerminal(a.stdout) {
		return errors.New("refusing to write PNG data to a terminal; redirect stdout or use --out <file>")
	}
	bg, ok := palette.Lookup(a.genBackground)
	if !ok {
		return errors.Errorf("unknown background %q", a.genBackground)
	}
	g, err := bg.Gradient()
	if err != nil {
		return err
	}

	photo, err := os.ReadFile(args[0])
	if err != nil {
		return errors.Wrap(err, "read photo")
	}
	mimeType := imagedata.SniffMIME(photo)
	if !imagedata.IsImageMIME(mimeType) {
		return errors.Errorf("%s does not look like an image (%s)", args[0], mimeType)
	}

	client, err := gemini.New(ctx, a.cfg.Gemini, gemini.WithLogger(a.log))
	if err != nil {
		return err
	}
	comp, err := compose.FromConfig(a.cfg.Compose)
	if err != nil {
		return err
	}

	var shell studio.Shell
	ticket := shell.Begin(studio.Image{MimeType: mimeType, Data: photo})
	fmt.Fprintf(a.stderr, "Styling %s with %s...\n", args[0], client.Model())

	res, err := client.Restyle(ctx, gemini.GenerateRequest{
		ImageBase64: imagedata.Encode(photo),
		MimeType:    mimeType,
		Prompt:      a.genPrompt,
	})
	if err != nil {
		shell.Fail(ticket, err)
		if !a.genKeepOriginal {
			return err
		}
		fmt.Fprintf(a.stderr, "Generation failed (%s): %s\nFraming the original photo instead.\n",
			apperr.KindOf(err), apperr.Message(err))
	} else {
		styled, err := imagedata.Decode(res.ImageBase64)
		if err != nil {
			return err
		}
		shell.Complete(ticket, studio.Image{MimeType: res.MimeType, Data: styled})
	}

	src, err := shell.DownloadSource()
	if err != nil {
		return err
	}
	out, err := comp.Compose(ctx, src.Data, g)
	if err != nil {
		return err
	}
	return a.writeOutput(out)
}

func (a *App) writeOutput(out *compose.Output) error {
	if a.genOut == "-" {
		_, err := a.stdout.Write(out.PNG)
		return errors.Wrap(err, "write stdout")
	}
	if err := os.WriteFile(a.genOut, out.PNG, 0o644); err != nil {
		return errors.Wrap(err, "write avatar")
	}
	fmt.Fprintf(a.stderr, "Saved %s (%d bytes)\n", a.genOut, len(out.PNG))
	return nil
}
