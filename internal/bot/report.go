package bot

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

// reportTail caps how many history entries the shutdown report prints. The
// full log is still available through History and the history file.
const reportTail = 20

// PrintStartup writes the run header: what is held and what is polled.
func PrintStartup(heldDate string, facilities []string, refresh time.Duration, leadDays int, dryRun bool) {
	headerColor := color.New(color.FgHiCyan, color.Bold).SprintFunc()
	labelColor := color.New(color.FgWhite).SprintFunc()
	valueColor := color.New(color.FgHiWhite).SprintFunc()
	warnColor := color.New(color.FgHiYellow, color.Bold).SprintFunc()

	fmt.Println("\n" + headerColor("[Visa Appointment Rebooker]"))
	fmt.Printf("%s  : %s\n", labelColor("Current appointment"), valueColor(heldDate))
	fmt.Printf("%s           : %s\n", labelColor("Facilities"), valueColor(strings.Join(facilities, ", ")))
	fmt.Printf("%s        : %s\n", labelColor("Poll interval"), valueColor(refresh.String()))
	fmt.Printf("%s            : %s\n", labelColor("Lead time"), valueColor(fmt.Sprintf("%d days", leadDays)))
	if dryRun {
		fmt.Println(warnColor("DRY RUN: bookings will not be submitted"))
	}
	fmt.Println()
}

// PrintBooked celebrates a booking the portal accepted.
func PrintBooked(date, tm, facility string) {
	successColor := color.New(color.FgGreen, color.Bold).SprintFunc()
	fmt.Println("\n" + successColor(fmt.Sprintf("🎉 BOOKED %s %s at facility %s 🎉", date, tm, facility)) + "\n")
}

// PrintSummary renders the run log when the process shuts down.
func PrintSummary(h *History, heldDate string) {
	headerColor := color.New(color.FgHiCyan, color.Bold).SprintFunc()
	sectionColor := color.New(color.FgHiYellow).SprintFunc()
	labelColor := color.New(color.FgWhite).SprintFunc()
	valueColor := color.New(color.FgHiWhite).SprintFunc()
	successColor := color.New(color.FgGreen, color.Bold).SprintFunc()
	errorColor := color.New(color.FgRed, color.Bold).SprintFunc()

	entries := h.Entries()

	fmt.Println("\n" + headerColor("[Run Summary]"))
	fmt.Printf("%s       : %s\n", labelColor("Holding"), valueColor(heldDate))
	fmt.Printf("%s       : %s\n", labelColor("Entries"), valueColor(fmt.Sprintf("%d", len(entries))))
	fmt.Printf("%s        : %s\n", labelColor("Booked"), successColor(fmt.Sprintf("%d", h.Count(ActionBooked))))
	fmt.Printf("%s        : %s\n", labelColor("Errors"), errorColor(fmt.Sprintf("%d", h.Count(ActionError))))

	fmt.Println("\n" + sectionColor("--------------------------------------------------"))
	if len(entries) > reportTail {
		fmt.Println(sectionColor(fmt.Sprintf("[Last %d entries]", reportTail)))
		entries = entries[len(entries)-reportTail:]
	} else {
		fmt.Println(sectionColor("[Entries]"))
	}
	fmt.Println(sectionColor("--------------------------------------------------"))

	for _, e := range entries {
		line := fmt.Sprintf("%s  %-7s  %s", e.At.Format("15:04:05"), e.Action, e.Detail)
		switch e.Action {
		case ActionBooked:
			fmt.Println(successColor(line))
		case ActionError:
			fmt.Println(errorColor(line))
		default:
			fmt.Println(line)
		}
	}
	fmt.Println()
}

// WriteHistory appends the run log to filename as JSON lines, one entry per
// line, so long-lived runs leave a record that survives the process.
func WriteHistory(h *History, filename string) error {
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, e := range h.Entries() {
		b, err := json.Marshal(e)
		if err != nil {
			return err
		}
		if _, err := f.Write(append(b, '\n')); err != nil {
			return err
		}
	}
	return nil
}
