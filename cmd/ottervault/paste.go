package main

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/its-jojoo/ottervault/internal/clierr"
	"github.com/its-jojoo/ottervault/internal/core"
)

type pasteFlags struct {
	text  string
	html  string
	uri   string
	image string
}

func newPasteCmd(opts *options) *cobra.Command {
	var f pasteFlags

	cmd := &cobra.Command{
		Use:   "paste [text...]",
		Short: "Add a paste to the vault",
		Long: `Builds one paste from the given representations and lets the vault pick
the richest: HTML becomes an article, a URI list a link, an image file an image,
and plain text a text item. With no flags and no arguments, stdin is read as
plain text.`,
		Example: `  ottervault paste "hello world"
  ottervault paste --uri https://example.com
  ottervault paste --html page.html --text "fallback"
  ottervault paste --image shot.png
  pbpaste | ottervault paste`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ev, err := f.event(cmd, args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			p := a.capture.Paste(ctx, ev)
			item, err := p.Wait(ctx)
			if err != nil {
				return clierr.Wrap(clierr.ExitCodeStorage, "failed to save paste", err)
			}
			out := cmd.OutOrStdout()
			if item == nil {
				fmt.Fprintln(out, "(declined)")
				return nil
			}
			fmt.Fprintf(out, "saved %s %s\n", item.Type, item.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&f.text, "text", "", "Plain text representation")
	cmd.Flags().StringVar(&f.html, "html", "", "File holding an HTML representation")
	cmd.Flags().StringVar(&f.uri, "uri", "", "URI list representation")
	cmd.Flags().StringVar(&f.image, "image", "", "Image file (png or jpeg)")
	return cmd
}

func (f pasteFlags) event(cmd *cobra.Command, args []string) (*core.PasteEvent, error) {
	ev := core.NewPasteEvent()
	given := false

	if f.html != "" {
		data, err := os.ReadFile(f.html)
		if err != nil {
			return nil, clierr.Wrap(clierr.ExitCodeFile, "failed to read --html", err)
		}
		ev.With(core.MIMEHTML, string(data))
		given = true
	}
	if cmd.Flags().Changed("uri") {
		ev.With(core.MIMEURIList, f.uri)
		given = true
	}
	if f.image != "" {
		b, err := readImage(f.image)
		if err != nil {
			return nil, err
		}
		ev.Attach(b)
		given = true
	}

	switch {
	case cmd.Flags().Changed("text"):
		ev.With(core.MIMEPlain, f.text)
	case len(args) > 0:
		ev.With(core.MIMEPlain, strings.Join(args, " "))
	case !given:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, clierr.Wrap(clierr.ExitCodeFile, "failed to read stdin", err)
		}
		ev.With(core.MIMEPlain, string(data))
	}
	return ev, nil
}

// readImage sniffs the file's format, falling back to its extension. Files
// that claim to be images but do not decode are declined later by the vault.
func readImage(path string) (core.Blob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return core.Blob{}, clierr.Wrap(clierr.ExitCodeFile, "failed to read --image", err)
	}
	if m, err := core.DetectImage(data); err == nil {
		return core.Blob{MIME: m, Data: data}, nil
	}
	m, _, _ := mime.ParseMediaType(mime.TypeByExtension(filepath.Ext(path)))
	if !core.IsImageMIME(m) {
		return core.Blob{}, clierr.New(clierr.ExitCodeValidation, "unsupported image "+path).
			WithSuggestion("Supported formats: png, jpeg")
	}
	return core.Blob{MIME: m, Data: data}, nil
}
