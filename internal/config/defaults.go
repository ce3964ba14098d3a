package config

const (
	defaultLogDir             = "~/.local/state/modbase/logs"
	defaultLogRetentionDays   = 30
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultAppID              = "1158310"
	defaultNamePrefix         = "Crusader Kings III"
	defaultMetadataFile       = ".ck3-version.json"
	defaultManifestDir        = ".DepotDownloader"
	defaultLauncherSettings   = "launcher/launcher-settings.json"
	defaultStoreBaseURL       = "https://store.steampowered.com"
	defaultStoreLanguage      = "english"
	defaultStoreUserAgent     = "modbase/dev"
	defaultRequestDelayMS     = 200
	defaultPageSize           = 100
	defaultMaxPages           = 20
	defaultCheckPageSize      = 10
	defaultStoreTimeoutSecond = 30
	defaultDownloadBinary     = "DepotDownloader"
	defaultPlaceholderNote    = "Binary file excluded from repository. Metadata only."
)

// DefaultSkipExtensions lists engine binaries that carry no modding value and
// are dropped from the extracted tree entirely.
var DefaultSkipExtensions = []string{
	".dll", ".dylib", ".exe", ".so", ".a", ".lib", ".pyd", ".node",
}

// DefaultPlaceholderExtensions lists binary asset formats replaced by
// hash/size placeholders in the extracted tree.
var DefaultPlaceholderExtensions = []string{
	// images
	".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tga", ".dds", ".ico", ".svg",
	".webp", ".tiff", ".tif", ".psd", ".xcf",
	// audio
	".mp3", ".wav", ".ogg", ".flac", ".m4a", ".aac", ".wma", ".opus", ".ape", ".bank",
	// video
	".mp4", ".avi", ".mkv", ".mov", ".wmv", ".flv", ".webm", ".m4v", ".mpg", ".mpeg", ".bk2",
	// fonts
	".ttf", ".otf", ".woff", ".woff2", ".eot", ".font", ".fnt",
	// archives
	".zip", ".rar", ".7z", ".tar", ".gz", ".bz2", ".xz", ".tgz", ".tbz2",
	// documents
	".pdf", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx",
	// databases
	".db", ".sqlite", ".sqlite3", ".mdb", ".accdb",
	// compiled code
	".o", ".obj", ".pyc", ".pyo", ".class", ".jar", ".war", ".ear", ".dex", ".apk",
	// binary data
	".bin", ".dat", ".data", ".pak", ".cache",
	// game and 3D assets
	".anim", ".mesh", ".asset", ".fbx", ".3ds", ".blend", ".gfx", ".shader", ".sav", ".cur",
	// certificates and keys
	".pfx", ".p12", ".jks", ".keystore", ".cer", ".crt", ".der", ".pem", ".key",
	// logs and temporaries
	".log", ".tmp", ".temp", ".bak", ".backup",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir(),
			LogDir:   defaultLogDir,
		},
		Product: Product{
			AppID:            defaultAppID,
			NamePrefix:       defaultNamePrefix,
			MetadataFile:     defaultMetadataFile,
			ManifestDir:      defaultManifestDir,
			LauncherSettings: defaultLauncherSettings,
		},
		Store: Store{
			BaseURL:        defaultStoreBaseURL,
			Language:       defaultStoreLanguage,
			UserAgent:      defaultStoreUserAgent,
			RequestDelayMS: defaultRequestDelayMS,
			PageSize:       defaultPageSize,
			MaxPages:       defaultMaxPages,
			CheckPageSize:  defaultCheckPageSize,
			TimeoutSeconds: defaultStoreTimeoutSecond,
		},
		Download: Download{
			Binary: defaultDownloadBinary,
		},
		Extract: Extract{
			SkipExtensions:        append([]string(nil), DefaultSkipExtensions...),
			PlaceholderExtensions: append([]string(nil), DefaultPlaceholderExtensions...),
			PlaceholderNote:       defaultPlaceholderNote,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
