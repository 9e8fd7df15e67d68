package console

import "github.com/fatih/color"

// Available ANSI colors
var (
	Yellow = color.New(color.FgYellow).SprintFunc()
	Red    = color.New(color.FgRed).SprintFunc()
	Green  = color.New(color.FgGreen).SprintFunc()
	White  = color.New(color.FgHiWhite).SprintFunc()
	Bold   = color.New(color.Bold).SprintFunc()
)

// channelColors tints the X, Y, Z and W channels.
var channelColors = []func(a ...interface{}) string{
	color.New(color.FgRed).SprintFunc(),
	color.New(color.FgGreen).SprintFunc(),
	color.New(color.FgBlue).SprintFunc(),
	color.New(color.FgHiWhite).SprintFunc(),
}

// Channel colors a value by its channel index.
func Channel(index int, v interface{}) string {
	if index < 0 || index >= len(channelColors) {
		return White(v)
	}
	return channelColors[index](v)
}
