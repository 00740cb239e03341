package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/common-nighthawk/go-figure"
	"github.com/fatih/color"

	"github.com/nakambe-watch/nakambe-dashboard/internal/notification"
)

func printBanner() {
	figure1 := figure.NewFigure("Nakambe", "isometric1", true)
	figure2 := figure.NewFigure("NDVI-NDWI", "small", true)
	color.Cyan(figure1.String())
	color.Cyan(figure2.String())
	fmt.Println()
}

// recoverPanic prints the panic location and reports it to the Discord error webhook.
func recoverPanic() {
	r := recover()
	if r == nil {
		return
	}
	pc, file, line, ok := runtime.Caller(3)
	location := "Unknown location"
	if ok {
		location = fmt.Sprintf("%s:%d in %s", file, line, runtime.FuncForPC(pc).Name())
	}

	red := color.New(color.FgRed)
	red.Printf("\nPANIC: %v\n", r)
	red.Printf("Location: %s\n", location)
	red.Println("Please check the input and try again.")
	red.Println("Exiting...")

	errMessage := fmt.Sprintf("Nakambé dashboard panic:\n\n%v\n\nLocation: %s\n\nStack trace:\n%s", r, location, debug.Stack())
	if err := notification.SendDiscordErrorNotification(errMessage); err != nil {
		red.Printf("Failed to send notification: %s\n", err.Error())
	}
	os.Exit(2)
}

func main() {
	defer recoverPanic()

	if err := newRootCmd().Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "\nError: %s\n", err)
		os.Exit(1)
	}
}
