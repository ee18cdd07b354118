package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/joho/godotenv"

	"fairlens/adapters/api"
	"fairlens/adapters/render"
	"fairlens/adapters/tabio"
	"fairlens/app"
	"fairlens/internal/config"
	"fairlens/internal/logging"
	"fairlens/internal/report"
	"fairlens/internal/testkit"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}
	logger := logging.NewDefault()

	if cfg.Profiling.Enabled {
		go func() {
			logger.Info("pprof listening on :%s", cfg.Profiling.Port)
			if err := http.ListenAndServe(":"+cfg.Profiling.Port, nil); err != nil {
				logger.Warn("pprof server stopped: %v", err)
			}
		}()
	}

	mode := "serve"
	if flag.Parse(); flag.NArg() > 0 {
		mode = flag.Arg(0)
	}

	service := app.NewReportService(logger)
	switch mode {
	case "serve":
		server := api.NewServer(service, logger)
		if err := server.ListenAndServe(cfg.Server.Port); err != nil {
			log.Fatalf("server stopped: %v", err)
		}
	case "demo":
		if err := runDemo(service, cfg, logger); err != nil {
			log.Fatalf("demo failed: %v", err)
		}
	case "report":
		if err := runFileReport(service, cfg, logger); err != nil {
			log.Fatalf("report failed: %v", err)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown mode %q (expected serve, demo, or report)\n", mode)
		os.Exit(2)
	}
}

// runDemo audits a synthetic dataset and prints the reports as Markdown.
func runDemo(service *app.ReportService, cfg *config.Config, logger *logging.Logger) error {
	gen := testkit.New(testkit.DefaultConfig())
	ds := gen.Generate()

	opts := report.DefaultOptions()
	opts.SigFig = cfg.Report.SigFig
	opts.ErrLimit = cfg.Report.ErrLimit
	opts.PrivGrp = cfg.Report.PrivilegedCode
	opts.Log = logger

	audit, err := service.FullAudit(context.Background(), app.ReportRequest{
		X:        ds.X,
		PrtcAttr: ds.PrtcAttr,
		YTrue:    ds.YTrue,
		YPred:    ds.YPred,
		YProb:    ds.YProb,
		Options:  opts,
		Caption:  cfg.Report.FlagCaption,
		Flag:     true,
	})
	if err != nil {
		return err
	}

	fmt.Println("## Summary")
	fmt.Println(render.Markdown(audit.Summary.Table))
	fmt.Println("## Bias")
	fmt.Println(render.Markdown(audit.Bias.Table))
	fmt.Println("## Performance")
	fmt.Println(render.Markdown(audit.Performance.Table))
	if audit.Summary.Styled != nil {
		logger.Info("summary has %d flagged cells", audit.Summary.Styled.FlagCount())
	}
	return nil
}

// runFileReport loads a CSV or xlsx dataset and writes the bias and
// performance reports next to it.
func runFileReport(service *app.ReportService, cfg *config.Config, logger *logging.Logger) error {
	if cfg.Data.InputFile == "" {
		return fmt.Errorf("INPUT_FILE is required for report mode")
	}
	data, err := tabio.NewDataReader(cfg.Data.InputFile).Read()
	if err != nil {
		return err
	}
	yTrue, err := tabio.Column(data, cfg.Data.TargetCol)
	if err != nil {
		return err
	}
	yPred, err := tabio.Column(data, cfg.Data.PredCol)
	if err != nil {
		return err
	}
	var yProb []float64
	if cfg.Data.ProbCol != "" {
		if yProb, err = tabio.Column(data, cfg.Data.ProbCol); err != nil {
			return err
		}
	}

	X := data.Copy()
	for _, col := range []string{cfg.Data.TargetCol, cfg.Data.PredCol, cfg.Data.ProbCol} {
		if col != "" && X.Has(col) {
			X.DropColumn(col)
		}
	}

	opts := report.DefaultOptions()
	opts.SigFig = cfg.Report.SigFig
	opts.ErrLimit = cfg.Report.ErrLimit
	opts.PrivGrp = cfg.Report.PrivilegedCode
	opts.Log = logger

	req := app.ReportRequest{
		X: X, YTrue: yTrue, YPred: yPred, YProb: yProb,
		Options: opts, Caption: cfg.Report.FlagCaption, Flag: true,
	}

	ctx := context.Background()
	bias, err := service.Bias(ctx, req)
	if err != nil {
		return err
	}
	perf, err := service.Performance(ctx, req)
	if err != nil {
		return err
	}
	if err := tabio.WriteCSV(bias.Table, "bias_report.csv"); err != nil {
		return err
	}
	if err := tabio.WriteExcel(perf.Table, "performance_report.xlsx", "Performance"); err != nil {
		return err
	}
	logger.Info("wrote bias_report.csv and performance_report.xlsx")

	if cfg.Data.ProtectCol != "" && data.Has(cfg.Data.ProtectCol) {
		prtc, err := tabio.Column(data, cfg.Data.ProtectCol)
		if err != nil {
			return err
		}
		req.PrtcAttr = prtc
		if X.Has(cfg.Data.ProtectCol) {
			req.X = X.Copy()
			req.X.DropColumn(cfg.Data.ProtectCol)
		}
		summary, err := service.Summary(ctx, req)
		if err != nil {
			return err
		}
		if summary.Styled != nil {
			html, err := render.HTML(summary.Styled)
			if err != nil {
				return err
			}
			if err := os.WriteFile("summary_report.html", []byte(html), 0o644); err != nil {
				return err
			}
			logger.Info("wrote summary_report.html (%d flagged cells)", summary.Styled.FlagCount())
		}
	}
	return nil
}
