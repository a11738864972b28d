package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"er-capacity-scraper/alert"
	"er-capacity-scraper/config"
	"er-capacity-scraper/db"
	"er-capacity-scraper/fetcher"
	"er-capacity-scraper/models"
	"er-capacity-scraper/parser"
	"er-capacity-scraper/publisher"
	"er-capacity-scraper/render"
	"er-capacity-scraper/scheduler"
	"er-capacity-scraper/sheets"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	templatePath := flag.String("template", "template.html", "Path to the page template")
	outputPath := flag.String("out", "index.html", "Path of the generated page, relative to the repository root")
	repoDir := flag.String("repo", ".", "Repository root for commit operations")
	publish := flag.Bool("publish", false, "Commit and push the output file when it changed")
	daemon := flag.Bool("daemon", false, "Keep running and update at the top of every hour")
	spreadsheetURL := flag.String("spreadsheet", "", "Google Sheets URL for snapshot history (optional)")
	credentialsPath := flag.String("credentials", "", "Path to Google service account credentials JSON file (or use GOOGLE_SHEETS_CREDENTIALS env var)")
	flag.Parse()

	cfg := loadConfig(*configPath)

	app := newApp(cfg, *templatePath, *outputPath, *repoDir, *publish, *spreadsheetURL, *credentialsPath)
	defer app.Close()

	// Default mode is a single run, which is what the CI workflow invokes
	if !*daemon {
		if err := app.RunOnce(); err != nil {
			log.Fatalf("Update run failed: %v\n", err)
		}
		return
	}

	runDaemon(app)
}

// app bundles the components of one deployment
type app struct {
	cfg       *config.Config
	fetcher   *fetcher.CollyFetcher
	parser    *parser.Parser
	renderer  *render.Renderer
	publisher *publisher.Publisher
	publish   bool
	outPath   string

	database *db.DB         // nil when no database is configured
	writer   *sheets.Writer // nil when no spreadsheet is configured
	notifier *alert.Notifier
}

func newApp(cfg *config.Config, templatePath, outputPath, repoDir string, publish bool, spreadsheetURL, credentialsPath string) *app {
	a := &app{
		cfg:      cfg,
		fetcher:  fetcher.NewCollyFetcher(time.Duration(cfg.Source.TimeoutSeconds) * time.Second),
		parser:   parser.NewParser(cfg.Hospitals, cfg.StatKeywords),
		renderer: render.NewRenderer(templatePath, cfg.Timezone, cfg.StatKeywords),
		publish:  publish,
		outPath:  outputPath,
	}

	a.publisher = publisher.NewPublisher(repoDir, outputPath, publisher.Identity{
		Name:  cfg.Git.AuthorName,
		Email: cfg.Git.AuthorEmail,
	}, true)

	// Optional run history in Postgres
	if os.Getenv("DATABASE_URL") != "" {
		database, err := db.NewDB()
		if err != nil {
			log.Printf("Warning: Failed to initialize database, history disabled: %v\n", err)
		} else {
			a.database = database
			log.Println("Database initialized successfully")
		}
	}

	// Optional snapshot history in Google Sheets
	if spreadsheetURL != "" {
		spreadsheetID := sheets.ExtractSpreadsheetID(spreadsheetURL)
		if spreadsheetID == "" {
			log.Printf("Warning: Could not extract spreadsheet ID from URL: %s\n", spreadsheetURL)
		} else {
			writer, err := sheets.NewWriter(spreadsheetID, credentialsPath)
			if err != nil {
				log.Printf("Warning: Failed to initialize Google Sheets writer: %v\n", err)
			} else {
				a.writer = writer
				log.Printf("Google Sheets writer initialized for spreadsheet: %s\n", spreadsheetID)
			}
		}
	}

	return a
}

// Close releases held resources
func (a *app) Close() {
	if a.database != nil {
		a.database.Close()
	}
}

// RunOnce performs one full update: fetch, parse, render, record, publish.
// Fetch and parse failures degrade to an error notice on the page; render,
// write and git failures are fatal for the run.
func (a *app) RunOnce() error {
	runID := a.startRun()

	report := a.scrape()

	if err := a.renderReport(report); err != nil {
		a.failRun(runID, err)
		return err
	}

	a.recordRun(runID, report)
	a.exportReport(report)
	a.sendAlerts(report)

	committed := false
	if a.publish {
		var err error
		committed, err = a.publisher.Publish(a.cfg.Git.CommitMessage)
		if err != nil {
			a.failRun(runID, err)
			return err
		}
	}

	a.finishRun(runID, report, committed)
	log.Printf("Update run completed (hospitals: %d, committed: %v)\n", len(report.Hospitals), committed)
	return nil
}

// scrape downloads and parses the capacity PDF. On failure it returns a
// report carrying the failure so the page can degrade instead of going stale
// silently.
func (a *app) scrape() models.Report {
	report := models.Report{FetchedAt: time.Now()}

	pdfURL := a.fetcher.DiscoverPDFURL(a.cfg.Source.DiscoveryURL, a.cfg.Source.PDFURL)

	data, err := a.fetcher.Fetch(pdfURL)
	if err != nil {
		log.Printf("Error downloading PDF: %v\n", err)
		report.FetchFailed = true
		return report
	}

	hospitals, err := a.parser.Parse(data)
	if err != nil {
		log.Printf("Warning: Failed to parse PDF: %v\n", err)
		return report
	}

	report.Hospitals = hospitals
	return report
}

func (a *app) renderReport(report models.Report) error {
	if report.FetchFailed {
		return a.renderer.RenderFetchFailure(report.FetchedAt, a.outPath)
	}
	return a.renderer.Render(report, a.outPath)
}

// startRun records the beginning of a run when history is enabled
func (a *app) startRun() int {
	if a.database == nil {
		return 0
	}
	runID, err := a.database.CreateRun()
	if err != nil {
		log.Printf("Warning: Failed to record run start: %v\n", err)
		return 0
	}
	return runID
}

func (a *app) recordRun(runID int, report models.Report) {
	if a.database == nil || runID == 0 {
		return
	}
	for _, h := range report.Hospitals {
		if err := a.database.SaveSnapshot(runID, h); err != nil {
			log.Printf("Warning: Failed to save snapshot for %s: %v\n", h.Name, err)
		}
	}
}

func (a *app) finishRun(runID int, report models.Report, committed bool) {
	if a.database == nil || runID == 0 {
		return
	}
	if err := a.database.FinishRun(runID, len(report.Hospitals), committed); err != nil {
		log.Printf("Warning: Failed to record run completion: %v\n", err)
	}
}

func (a *app) failRun(runID int, runErr error) {
	if a.database == nil || runID == 0 {
		return
	}
	if err := a.database.FailRun(runID, runErr); err != nil {
		log.Printf("Warning: Failed to record run failure: %v\n", err)
	}
}

func (a *app) exportReport(report models.Report) {
	if a.writer == nil || report.Empty() {
		return
	}
	if err := a.writer.AppendReport(report); err != nil {
		log.Printf("Warning: Failed to write to Google Sheets: %v\n", err)
	}
}

func (a *app) sendAlerts(report models.Report) {
	if a.notifier == nil {
		return
	}
	a.notifier.NotifyAlerts(alert.Evaluate(report, a.cfg))
}

// runDaemon runs the hourly scheduler until interrupted
func runDaemon(a *app) {
	// Telegram alerts only make sense for a long-running process
	if token := os.Getenv("ER_CAPACITY_TG"); token != "" && a.cfg.Alerts.TelegramChatID != 0 {
		notifier, err := alert.NewNotifier(token, a.cfg.Alerts.TelegramChatID)
		if err != nil {
			log.Printf("Warning: Failed to initialize Telegram notifier: %v\n", err)
		} else {
			a.notifier = notifier
			log.Println("Telegram notifier initialized")
		}
	} else {
		log.Println("Telegram alerts disabled (set ER_CAPACITY_TG and alerts.telegram_chat_id to enable)")
	}

	sched := scheduler.NewScheduler(func() {
		if err := a.RunOnce(); err != nil {
			log.Printf("Error: Update run failed: %v\n", err)
			if a.notifier != nil {
				a.notifier.NotifyFailure(err)
			}
		}
	})
	sched.Start()
	log.Println("Scheduler started, updating at the top of every hour")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	sched.Stop()
}

// loadConfig loads configuration from file or returns defaults
func loadConfig(configPath string) *config.Config {
	var cfg *config.Config
	if _, err := os.Stat(configPath); err == nil {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			log.Printf("Warning: Failed to load config file: %v. Using defaults.\n", err)
			cfg = config.GetDefaultConfig()
		}
	} else {
		log.Println("Config file not found. Using default configuration.")
		cfg = config.GetDefaultConfig()
	}
	return cfg
}
