package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/sunholo/loopkernel/internal/astview/astjson"
	"github.com/sunholo/loopkernel/internal/config"
	"github.com/sunholo/loopkernel/internal/kernel"
	"github.com/sunholo/loopkernel/internal/loopminer"
	"github.com/sunholo/loopkernel/internal/reconstruct"
)

func newReconstructCmd(verbose *bool) *cobra.Command {
	var (
		astPath     string
		specPath    string
		outPath     string
		depthMin    int
		compileTout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "reconstruct",
		Short: "Mine loops from a decoded AST and emit reconstructed kernels",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(astPath)
			if err != nil {
				return fmt.Errorf("opening AST file: %w", err)
			}
			defer f.Close()

			tu, err := astjson.Decode(f)
			if err != nil {
				return fmt.Errorf("decoding AST: %w", err)
			}

			filename := filepath.Base(astPath)
			datasetName := ""
			if specPath != "" {
				spec, err := config.LoadSpec(specPath)
				if err != nil {
					return fmt.Errorf("loading compilation spec: %w", err)
				}
				filename = spec.Source
				datasetName = spec.DatasetName
			}

			opts := reconstruct.Options{
				LoopMiner: loopminer.Options{DepthMin: depthMin},
				Kernel: kernel.Options{
					Filename:       filename,
					DatasetName:    datasetName,
					CompileTimeout: compileTout,
				},
			}

			records, err := reconstruct.FromUnit(context.Background(), tu, opts)
			if err != nil {
				return fmt.Errorf("reconstructing kernels: %w", err)
			}

			if *verbose {
				for i, rec := range records {
					fmt.Fprintf(os.Stderr, "%s kernel %d: depth=%d tokens=%d clang_returncode=%d\n",
						cyan("·"), i, rec.Meta.MaxLoopDepth, rec.Meta.NumTokens, rec.Meta.ClangReturncode)
				}
			}

			out, err := json.MarshalIndent(records, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling records: %w", err)
			}

			if outPath == "" {
				fmt.Println(string(out))
			} else if err := os.WriteFile(outPath, out, 0o644); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}

			fmt.Fprintf(os.Stderr, "%s reconstructed %d kernel(s) from %s\n", green("done"), len(records), astPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&astPath, "ast", "", "path to a serialized AST JSON file (required)")
	cmd.Flags().StringVar(&specPath, "spec", "", "path to a compilation spec YAML file")
	cmd.Flags().StringVar(&outPath, "out", "", "write reconstructed kernels here instead of stdout")
	cmd.Flags().IntVar(&depthMin, "depth-min", loopminer.DefaultDepthMin, "minimum for-loop nest depth to keep")
	cmd.Flags().DurationVar(&compileTout, "compile-timeout", 0, "wall-clock timeout for the compile-check subprocess")
	cmd.MarkFlagRequired("ast")

	return cmd
}
