package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"docverify/internal/document/extract"
	"docverify/internal/document/mrz"
	"docverify/internal/eligibility"
	"docverify/internal/ocr"
	"docverify/internal/platform/config"
	"docverify/internal/platform/logger"
	"docverify/internal/verification"
	"docverify/internal/verification/handler"
	"docverify/pkg/requestcontext"
)

// env carries what commands read from the process environment. Tests
// replace it wholesale.
type env struct {
	cfg    config.Server
	now    func() time.Time
	logger *slog.Logger
	// engine overrides the configured OCR engine when set.
	engine ocr.Engine
}

func defaultEnv() env {
	cfg := config.FromEnv()
	return env{
		cfg:    cfg,
		now:    time.Now,
		logger: logger.NewWithWriter(os.Stderr, cfg.LogLevel),
	}
}

func newRootCmd(e env) *cobra.Command {
	root := &cobra.Command{
		Use:          "verifyctl",
		Short:        "Verify identity documents against an applicant declaration",
		SilenceUsage: true,
	}
	root.AddCommand(newMrzCmd(), newExtractCmd(e), newVerifyCmd(e))
	return root
}

func newMrzCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mrz [text-file]",
		Short: "Decode the first machine-readable zone in an OCR text file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read text file: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), mrz.DecodeText(string(text)))
		},
	}
}

func newExtractCmd(e env) *cobra.Command {
	return &cobra.Command{
		Use:   "extract [text-file]",
		Short: "Print the identity fields read from an OCR text file",
		Long:  `Extracts labelled fields from the text, then folds in any decoded MRZ values.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read text file: %w", err)
			}
			text := string(raw)
			now := e.now()
			fields := extract.MergeMrz(extract.Extract(text, now), mrz.DecodeText(text), now)
			return writeJSON(cmd.OutOrStdout(), fields)
		},
	}
}

type verifyFlags struct {
	applicantPath string
	policyPath    string
	textInput     bool
}

func newVerifyCmd(e env) *cobra.Command {
	var flags verifyFlags
	cmd := &cobra.Command{
		Use:   "verify [document...]",
		Short: "Run the full verification pipeline over one or more documents",
		Long: `Recognizes each document with the configured OCR engine and scores the batch
against the applicant declaration. With --text the files are treated as
already-recognized text.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, e, flags, args)
		},
	}
	cmd.Flags().StringVarP(&flags.applicantPath, "applicant", "a", "", "Path to the applicant JSON declaration")
	cmd.Flags().StringVarP(&flags.policyPath, "policy", "p", "", "Path to a JSON policy override")
	cmd.Flags().BoolVar(&flags.textInput, "text", false, "Treat documents as OCR text instead of images")
	_ = cmd.MarkFlagRequired("applicant")
	return cmd
}

func runVerify(cmd *cobra.Command, e env, flags verifyFlags, paths []string) error {
	var applicant handler.ApplicantRequest
	if err := readJSONFile(flags.applicantPath, &applicant); err != nil {
		return fmt.Errorf("read applicant: %w", err)
	}
	applicant.Sanitize()
	if err := applicant.Validate(); err != nil {
		return err
	}

	var inline *eligibility.PolicyInput
	if flags.policyPath != "" {
		inline = &eligibility.PolicyInput{}
		if err := readJSONFile(flags.policyPath, inline); err != nil {
			return fmt.Errorf("read policy: %w", err)
		}
	}

	defaults, err := eligibility.LoadDefaults(e.cfg.PolicyFile)
	if err != nil {
		return err
	}
	now := e.now()
	ctx := requestcontext.WithTime(context.Background(), now)
	policy, err := eligibility.NewResolver(defaults, eligibility.WithLogger(e.logger)).Resolve(ctx, "", inline)
	if err != nil {
		return err
	}

	engine, err := e.ocrEngine(flags.textInput)
	if err != nil {
		return err
	}

	documents := make([][]byte, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read document: %w", err)
		}
		documents = append(documents, data)
	}

	svc := verification.New(engine,
		verification.WithLogger(e.logger),
		verification.WithOCRTimeout(e.cfg.OCR.Timeout),
	)
	resp := svc.Verify(ctx, verification.Request{
		Documents: documents,
		Applicant: applicant.ToModel(),
		Policy:    policy,
	})
	return writeJSON(cmd.OutOrStdout(), resp)
}

func (e env) ocrEngine(textInput bool) (ocr.Engine, error) {
	switch {
	case textInput:
		return ocr.NewText(), nil
	case e.engine != nil:
		return e.engine, nil
	}
	return ocr.New(ocr.Options{
		Engine:        e.cfg.OCR.Engine,
		TesseractPath: e.cfg.OCR.TesseractPath,
		Language:      e.cfg.OCR.Language,
		OpenAIKey:     e.cfg.OCR.OpenAIKey,
		OpenAIModel:   e.cfg.OCR.OpenAIModel,
	}, e.logger)
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
