package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hii-thaiwater/reportgen/internal/deck"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <template.pptx>",
		Short: "List slide keys and the shape inventory of a template",
		Long: `inspect prints each slide's anchor key and its shapes in z-order,
with geometry in centimeters. Use it to find the shape names a
configuration file must bind to.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd.OutOrStdout(), args[0])
		},
	}
}

func runInspect(w io.Writer, path string) error {
	eng, err := deck.Open(path, slog.New(slog.DiscardHandler))
	if err != nil {
		return err
	}

	keys, err := eng.SlideKeys()
	if err != nil {
		return err
	}

	for i, key := range keys {
		slide, err := eng.SlideAt(i)
		if err != nil {
			return err
		}

		if key != "" {
			fmt.Fprintf(w, "Slide %d  [key: %s]\n", i+1, key)
		} else {
			fmt.Fprintf(w, "Slide %d  [no key]\n", i+1)
		}

		for _, sh := range eng.Shapes(slide) {
			name := sh.Name
			if name == "" {
				name = "(unnamed)"
			}
			fmt.Fprintf(w, "  %-14s %-28s", sh.Kind, name)
			if g := sh.Geometry; g != (deck.Geometry{}) {
				fmt.Fprintf(w, " %6.2f x %6.2f cm at (%.2f, %.2f) cm",
					deck.EMUToCentimeter(g.Width), deck.EMUToCentimeter(g.Height),
					deck.EMUToCentimeter(g.Left), deck.EMUToCentimeter(g.Top))
			}
			if sh.HasText {
				fmt.Fprint(w, "  [text]")
			}
			fmt.Fprintln(w)
		}
	}
	return nil
}
