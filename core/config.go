package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	serverConfig struct {
		Host                      string
		Address                   string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		ReadTimeout               time.Duration
		WriteTimeout              time.Duration
		JWTAudience               string
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	dbConfig struct {
		Engine        string
		Host          string
		Port          int
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	billingConfig struct {
		TimeZone      string
		Location      *time.Location
		MonthlySpec   string // cron spec for due generation
		DailySpec     string // cron spec for due revaluation
		StartupDelay  time.Duration
		DefaultTariff int64
		TariffKey     string

		// pricing policy; percentages are whole numbers
		SiblingDiscountPct     int
		OnTimeUntilDay         int // last day without surcharge
		FirstLateUntilDay      int // last day of the first surcharge tier
		FirstLateSurchargePct  int
		SecondLateSurchargePct int
		CorrectionSurchargePct int
	}

	Config struct {
		Env              string
		Build            string
		Debug            bool
		TestMode         bool
		AppName          string
		SecretKey        string
		FrontendBaseURL  string
		defaultFromEmail string
		SendgridApiKey   string
		RollbarToken     string
		Server           serverConfig
		Database         dbConfig
		Billing          billingConfig
	}
)

func (c *Config) DefaultFromEmail() mail.Address {
	if addr, err := mail.ParseAddress(c.defaultFromEmail); err == nil {
		return *addr
	}
	return mail.Address{Name: c.AppName, Address: c.defaultFromEmail}
}

func (c dbConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// NewConfig reads the configuration from the environment, optionally pre-loaded from config/.env.<env>.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("build", "dev")
	v.SetDefault("appName", "Sistema Interno")
	v.SetDefault("secretKey", "poq5-wer)enb$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "Sistema Interno <noreply@localhost>")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("serverHost", "localhost")
	v.SetDefault("serverAddress", ":8000")
	v.SetDefault("serverDebugHost", ":4000")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("serverReadTimeout", 5*time.Second)
	v.SetDefault("serverWriteTimeout", 10*time.Second)
	v.SetDefault("jwtAudience", "Academia")
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)

	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", 5432)
	v.SetDefault("dbName", "sistema_interno")
	v.SetDefault("dbUser", "postgres")
	v.SetDefault("dbPassword", "postgres")
	v.SetDefault("dbAdminUser", "")
	v.SetDefault("dbAdminPassword", "")
	v.SetDefault("dbDisableTLS", true)

	v.SetDefault("billingTimeZone", "America/Argentina/Buenos_Aires")
	v.SetDefault("billingMonthlySpec", "0 0 1 * *")
	v.SetDefault("billingDailySpec", "0 0 * * *")
	v.SetDefault("billingStartupDelay", time.Minute)
	v.SetDefault("billingDefaultTariff", 30000)
	v.SetDefault("billingTariffKey", "base_tariff")
	v.SetDefault("billingSiblingDiscountPct", 10)
	v.SetDefault("billingOnTimeUntilDay", 10)
	v.SetDefault("billingFirstLateUntilDay", 20)
	v.SetDefault("billingFirstLateSurchargePct", 10)
	v.SetDefault("billingSecondLateSurchargePct", 20)
	v.SetDefault("billingCorrectionSurchargePct", 10)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	if wd, err := os.Getwd(); err == nil {
		dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
		if _, err := os.Stat(dotEnvPath); err == nil {
			if err := godotenv.Load(dotEnvPath); err != nil {
				log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
			}
		} else if !os.IsNotExist(err) {
			log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
		}
	}
	v.AutomaticEnv()

	conf := &Config{
		Env:              env,
		Build:            v.GetString("build"),
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		AppName:          v.GetString("appName"),
		SecretKey:        v.GetString("secretKey"),
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		defaultFromEmail: v.GetString("defaultFromEmail"),
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		RollbarToken:     v.GetString("rollbarToken"),
		Server: serverConfig{
			Host:                      v.GetString("serverHost"),
			Address:                   v.GetString("serverAddress"),
			DebugHost:                 v.GetString("serverDebugHost"),
			ShutdownTimeout:           v.GetDuration("serverShutdownTimeout"),
			ReadTimeout:               v.GetDuration("serverReadTimeout"),
			WriteTimeout:              v.GetDuration("serverWriteTimeout"),
			JWTAudience:               v.GetString("jwtAudience"),
			JWTExpirationDelta:        v.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("jwtRefreshExpirationDelta"),
		},
		Database: dbConfig{
			Engine:        v.GetString("dbEngine"),
			Host:          v.GetString("dbHost"),
			Port:          v.GetInt("dbPort"),
			Name:          v.GetString("dbName"),
			User:          v.GetString("dbUser"),
			Password:      v.GetString("dbPassword"),
			AdminUser:     v.GetString("dbAdminUser"),
			AdminPassword: v.GetString("dbAdminPassword"),
			DisableTLS:    v.GetBool("dbDisableTLS"),
		},
		Billing: billingConfig{
			TimeZone:      v.GetString("billingTimeZone"),
			MonthlySpec:   v.GetString("billingMonthlySpec"),
			DailySpec:     v.GetString("billingDailySpec"),
			StartupDelay:  v.GetDuration("billingStartupDelay"),
			DefaultTariff: v.GetInt64("billingDefaultTariff"),
			TariffKey:     v.GetString("billingTariffKey"),

			SiblingDiscountPct:     v.GetInt("billingSiblingDiscountPct"),
			OnTimeUntilDay:         v.GetInt("billingOnTimeUntilDay"),
			FirstLateUntilDay:      v.GetInt("billingFirstLateUntilDay"),
			FirstLateSurchargePct:  v.GetInt("billingFirstLateSurchargePct"),
			SecondLateSurchargePct: v.GetInt("billingSecondLateSurchargePct"),
			CorrectionSurchargePct: v.GetInt("billingCorrectionSurchargePct"),
		},
	}

	loc, err := time.LoadLocation(conf.Billing.TimeZone)
	if err != nil {
		log.Fatalf("config.LoadLocation(%s): %v", conf.Billing.TimeZone, err)
	}
	conf.Billing.Location = loc

	return conf
}

// NewTestConfig returns a Config suitable for tests: no env lookups, UTC billing time zone.
func NewTestConfig() *Config {
	return &Config{
		Env:              "TEST",
		Build:            "test",
		Debug:            false,
		TestMode:         true,
		AppName:          "Sistema Interno",
		SecretKey:        "test-secret",
		FrontendBaseURL:  "http://localhost:3000",
		defaultFromEmail: "noreply@localhost",
		Server: serverConfig{
			Host:                      "localhost",
			ShutdownTimeout:           time.Second,
			JWTAudience:               "Academia",
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: time.Hour,
		},
		Billing: billingConfig{
			TimeZone:      "UTC",
			Location:      time.UTC,
			MonthlySpec:   "0 0 1 * *",
			DailySpec:     "0 0 * * *",
			StartupDelay:  time.Minute,
			DefaultTariff: 30000,
			TariffKey:     "base_tariff",

			SiblingDiscountPct:     10,
			OnTimeUntilDay:         10,
			FirstLateUntilDay:      20,
			FirstLateSurchargePct:  10,
			SecondLateSurchargePct: 20,
			CorrectionSurchargePct: 10,
		},
	}
}
