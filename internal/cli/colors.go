package cli

// ANSI color codes for consistent styling across CLI commands
const (
	Reset = "\033[0m"

	Cyan   = "\033[36m"
	Gray   = "\033[90m"
	White  = "\033[37m"
	Yellow = "\033[33m"

	Bold = "\033[1m"
)

var (
	HeaderStyle = Cyan + Bold
	LabelStyle  = Cyan
	ValueStyle  = White + Bold
	MetaStyle   = Gray
	PriceStyle  = Yellow + Bold
)

func FormatHeader(text string) string {
	return HeaderStyle + text + Reset
}

func FormatLabel(text string) string {
	return LabelStyle + text + Reset
}

func FormatValue(text string) string {
	return ValueStyle + text + Reset
}

func FormatMeta(text string) string {
	return MetaStyle + text + Reset
}
