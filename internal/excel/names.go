package excel

import "strings"

const maxSheetNameLen = 31

var sheetNameReplacer = strings.NewReplacer(
	`\`, "_", "/", "_", "*", "_", "?", "_", ":", "_", "[", "_", "]", "_",
)

var fileNameReplacer = strings.NewReplacer(
	`\`, "_", "/", "_", "*", "_", "?", "_", ":", "_",
	`"`, "_", "<", "_", ">", "_", "|", "_",
)

// SafeSheetName replaces characters Excel rejects in sheet names and caps
// the length at 31 runes.
func SafeSheetName(name string) string {
	name = sheetNameReplacer.Replace(name)
	runes := []rune(name)
	if len(runes) > maxSheetNameLen {
		runes = runes[:maxSheetNameLen]
	}
	return string(runes)
}

// SafeFileName strips characters that are unsafe in download filenames.
// A name that sanitizes to nothing falls back to "municipality".
func SafeFileName(name string) string {
	name = strings.TrimSpace(fileNameReplacer.Replace(name))
	if name == "" {
		return "municipality"
	}
	return name
}
