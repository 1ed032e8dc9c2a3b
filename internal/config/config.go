package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/coachdesk/coachdesk/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Postgres   PostgresConfig   `validate:"required"`
	Billing    BillingConfig    `validate:"required"`
	Scheduler  SchedulerConfig
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// BillingConfig holds the knobs of the invoice generator and the
// commission ledger.
type BillingConfig struct {
	// SequencePadWidth is the zero-pad width of the invoice number
	// sequence segment, e.g. 4 for INV-202504-0001. Allocation fails
	// with a capacity error once a period's sequence no longer fits.
	SequencePadWidth int `validate:"required,min=1,max=9"`
	// DuesDueDay is the day of the target month that recurring dues
	// invoices fall due on.
	DuesDueDay int `validate:"required,min=1,max=28"`
	// RecurringDuesDescription is the line item text on generated
	// monthly dues invoices, formatted with the period, e.g.
	// "Monthly dues 2025-04".
	RecurringDuesDescription string
	// SequenceAllocationRetries bounds the internal retries on
	// transient sequence allocation conflicts before surfacing a
	// conflict to the caller.
	SequenceAllocationRetries int
}

// SchedulerConfig holds the cron expressions of the periodic billing jobs.
// Empty expressions disable the respective job; the operations stay
// manually triggerable through the API.
type SchedulerConfig struct {
	MonthlyDuesCron    string
	ReconcileUsageCron string
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/coachdesk")

	// Set up environment variables support
	v.SetEnvPrefix("COACHDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file if exists
	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", string(types.ModeLocal))
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", string(types.LogLevelInfo))
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("billing.sequencepadwidth", 4)
	v.SetDefault("billing.duesdueday", 15)
	v.SetDefault("billing.recurringduesdescription", "Monthly dues %s")
	v.SetDefault("billing.sequenceallocationretries", 3)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development
// and tests. This is useful for running scripts or other non-web
// applications.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Billing: BillingConfig{
			SequencePadWidth:          4,
			DuesDueDay:                15,
			RecurringDuesDescription:  "Monthly dues %s",
			SequenceAllocationRetries: 3,
		},
	}
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}
