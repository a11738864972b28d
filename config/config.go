package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the scraper configuration
type Config struct {
	Source struct {
		// PDFURL is the pinned location of the capacity PDF
		PDFURL string `yaml:"pdf_url"`
		// DiscoveryURL, when set, is a page scraped for the current PDF link
		// before falling back to PDFURL
		DiscoveryURL   string `yaml:"discovery_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"source"`

	// Hospitals are the section headings recognized in the PDF
	Hospitals []string `yaml:"hospitals"`
	// StatKeywords are the per-hospital statistics extracted from the PDF
	StatKeywords []string `yaml:"stat_keywords"`

	// Timezone used for the "last updated" stamp on the generated page
	Timezone string `yaml:"timezone"`

	Git struct {
		AuthorName    string `yaml:"author_name"`
		AuthorEmail   string `yaml:"author_email"`
		CommitMessage string `yaml:"commit_message"`
	} `yaml:"git"`

	Alerts struct {
		// WaitingThreshold triggers an alert when a hospital has at least
		// this many patients waiting for an inpatient bed (0 disables)
		WaitingThreshold int   `yaml:"waiting_threshold"`
		TelegramChatID   int64 `yaml:"telegram_chat_id"`
	} `yaml:"alerts"`
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := GetDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// GetDefaultConfig returns a default configuration
func GetDefaultConfig() *Config {
	cfg := &Config{}
	cfg.Source.PDFURL = "https://www.ehealthsask.ca/reporting/Documents/SaskatoonHospitalBedCapacity.pdf"
	cfg.Source.TimeoutSeconds = 30
	cfg.Hospitals = []string{
		"Royal University Hospital",
		"Saskatoon City Hospital",
		"Jim Pattison Children's Hospital",
	}
	cfg.StatKeywords = []string{
		"Patients in Department",
		"Waiting for Inpatient Bed",
	}
	cfg.Timezone = "Canada/Saskatchewan"
	cfg.Git.AuthorName = "er-capacity-bot"
	cfg.Git.AuthorEmail = "er-capacity-bot@users.noreply.github.com"
	cfg.Git.CommitMessage = "Automated: Updated ER capacity data."
	return cfg
}
