package config

type AppConfig struct {
	APIPort string `env:"PORT" envDefault:"11044"`
	APIKey  string `env:"API_KEY,required"`
}

type IMAPConfig struct {
	Host     string `env:"IMAP_HOST" envDefault:"imap.gmail.com"`
	Port     int    `env:"IMAP_PORT" envDefault:"993"`
	Username string `env:"IMAP_USERNAME,required"`
	Password string `env:"IMAP_PASSWORD,required"`
	Folder   string `env:"IMAP_FOLDER" envDefault:"INBOX"`
	TLS      bool   `env:"IMAP_TLS" envDefault:"true"`
}

type FilingConfig struct {
	DownloadDir         string   `env:"DOWNLOAD_DIR" envDefault:"downloads"`
	AllowedExtensions   []string `env:"ALLOWED_EXTENSIONS" envSeparator:"," envDefault:".pdf,.docx,.doc,.xlsx,.xls,.txt,.png,.jpg,.jpeg"`
	MaxAttachmentSizeMB int      `env:"MAX_ATTACHMENT_SIZE_MB" envDefault:"25"`
	// LedgerPath defaults to <DownloadDir>/.processed_hashes.txt when empty
	LedgerPath string `env:"LEDGER_PATH"`
	// RulesFile points at the YAML rule table; built-in defaults apply when empty
	RulesFile string `env:"RULES_FILE"`
}

type DatabaseConfig struct {
	Path string `env:"SQLITE_PATH" envDefault:"docsort.db"`
}
