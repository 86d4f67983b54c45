package constants

// Log file names.
const (
	// CLILogFileName is the name of the global CLI log file.
	// This file is located in ~/.minutes/logs/minutes.log
	CLILogFileName = "minutes.log"
)

// Configuration file names.
const (
	// GlobalConfigName is the name of the global configuration file.
	// This file is located in the minutes home directory.
	GlobalConfigName = "config.yaml"

	// EnvFileName is the dotenv file read from the working directory at startup.
	EnvFileName = ".env"

	// EnvPrefix is the prefix for environment variable overrides (MINUTES_SERVER_BASE_URL, ...).
	EnvPrefix = "MINUTES"
)

// History item title parts.
const (
	// TitleAudio prefixes titles of results produced from recordings or audio files.
	TitleAudio = "Meeting"

	// TitleImages prefixes titles of results produced from photographed pages.
	TitleImages = "Image Notes"

	// TitleDateLayout formats the timestamp suffix of a history title (e.g. "Mar 4, 2:15 PM").
	TitleDateLayout = "Jan 2, 3:04 PM"
)

// Result-ready notification text.
const (
	// NotificationTitle is shown when a result becomes available.
	NotificationTitle = "Meeting Ready ✓"

	// NotificationBody accompanies NotificationTitle.
	NotificationBody = "Your meeting summary is ready to view."
)
