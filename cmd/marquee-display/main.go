package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mxwhit/marquee/display"
)

func main() {
	host := flag.String("host", "localhost", "host the marquee server lives on")
	ports := flag.String("ports", "", "comma separated ports to probe instead of the defaults")
	flag.Parse()

	candidates, err := parsePorts(*ports)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	client := display.NewClient(*host, candidates)

	p := tea.NewProgram(display.NewModel(client), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "marquee-display exited with an error: %v\n", err)
		os.Exit(1)
	}
}

func parsePorts(raw string) ([]int, error) {
	if raw == "" {
		return nil, nil
	}
	var ports []int
	for _, segment := range strings.Split(raw, ",") {
		port, err := strconv.Atoi(strings.TrimSpace(segment))
		if err != nil {
			return nil, fmt.Errorf("invalid port %q", segment)
		}
		ports = append(ports, port)
	}
	return ports, nil
}
