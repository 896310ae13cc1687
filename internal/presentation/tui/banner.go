package tui

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner for Cultivar.
func PrintBanner(version string) {
	p := termenv.ColorProfile()
	// Using a subtle gradient-like color scheme (Green/Teal)
	s1 := termenv.String("   ____      _ _   _                 ").Foreground(p.Color("#34d399"))
	s2 := termenv.String("  / ___|   _| | |_(_)_   ____ _ _ __ ").Foreground(p.Color("#2dd4bf"))
	s3 := termenv.String(" | |  | | | | | __| \\ \\ / / _` | '__|").Foreground(p.Color("#22d3ee"))
	s4 := termenv.String(" | |__| |_| | | |_| |\\ V / (_| | |   ").Foreground(p.Color("#38bdf8"))
	s5 := termenv.String("  \\____\\__,_|_|\\__|_| \\_/ \\__,_|_|   ").Foreground(p.Color("#60a5fa"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	if v := strings.TrimSpace(version); v != "" {
		fmt.Println(termenv.String("  v" + v).Foreground(p.Color("#94a3b8")).Faint())
	}
	fmt.Println()
}
