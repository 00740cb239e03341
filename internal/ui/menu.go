package ui

import (
	"fmt"

	"github.com/nakambe-watch/nakambe-dashboard/internal/delivery"
	"github.com/nakambe-watch/nakambe-dashboard/internal/logging"
	"github.com/nakambe-watch/nakambe-dashboard/internal/maps"
	"github.com/nakambe-watch/nakambe-dashboard/internal/notification"
)

type menuOption struct {
	title   string
	handler func(d *delivery.Dashboard)
}

var menuOptions = []menuOption{
	{"Visualisation d'une carte par année", Visualise},
	{"Comparaison de deux cartes", Compare},
	{"Évolution des indices NDVI & NDWI", IndexEvolution},
	{"Timelapse des cartes", Timelapse},
	{"Vérifier les cartes disponibles", CheckAssets},
}

// ShowMenu displays the main menu until the user exits or stdin closes.
func ShowMenu(d *delivery.Dashboard) {
	exit := len(menuOptions) + 1
	for {
		infoColor.Fprintln(out, "===================")
		for i, opt := range menuOptions {
			infoColor.Fprintf(out, "%d. %s\n", i+1, opt.title)
		}
		infoColor.Fprintf(out, "%d. Quitter\n", exit)

		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		var choice int
		if _, err := fmt.Sscan(line, &choice); err != nil {
			PrintError("Invalid input. Please enter a number.")
			continue
		}
		if choice == exit {
			fmt.Fprintln(out, "Exiting...")
			return
		}
		if choice < 1 || choice > len(menuOptions) {
			PrintError("Invalid choice. Please try again.")
			continue
		}
		menuOptions[choice-1].handler(d)
	}
}

func Visualise(d *delivery.Dashboard) {
	year, err := SelectYear("Sélectionner une année : ", d.Years())
	if err != nil {
		PrintError(err.Error())
		return
	}
	path, err := d.ExportMap(year)
	if err != nil {
		if maps.IsUnavailable(err) {
			PrintWarning(fmt.Sprintf("L'image pour %s est introuvable ! Vérifiez le dossier %s.", year, d.Viewer.Dir()))
			return
		}
		PrintError(err.Error())
		return
	}
	PrintSuccess(fmt.Sprintf("Carte - %s enregistrée : %s", year, path))
}

func Compare(d *delivery.Dashboard) {
	years := d.Years()
	year1, err := SelectYear("Sélectionner la première année : ", years)
	if err != nil {
		PrintError(err.Error())
		return
	}
	year2, err := SelectYear("Sélectionner la deuxième année : ", years)
	if err != nil {
		PrintError(err.Error())
		return
	}
	opacity, err := ReadFloat(fmt.Sprintf("Opacité de la deuxième carte [%.1f-%.1f] (%.1f) : ", maps.MinOpacity, maps.MaxOpacity, maps.DefaultOpacity),
		maps.DefaultOpacity, maps.MinOpacity, maps.MaxOpacity)
	if err != nil {
		PrintError(err.Error())
		return
	}

	path, res, err := d.ExportComparison(year1, year2, opacity)
	if err != nil {
		PrintError(err.Error())
		return
	}
	if res.Degraded() {
		for _, w := range res.Warnings {
			PrintWarning(w)
		}
		return
	}
	if res.Resized {
		PrintWarning(fmt.Sprintf("La carte %s a été redimensionnée à la taille de la carte %s.", year2, year1))
	}
	PrintSuccess(fmt.Sprintf("Comparaison %s vs %s enregistrée : %s", year1, year2, path))
}

func IndexEvolution(d *delivery.Dashboard) {
	for _, p := range d.Panels() {
		successColor.Fprintf(out, "\n%s\n", p.Title)
		fmt.Fprintf(out, "%-6s", "Année")
		for _, s := range p.Series {
			fmt.Fprintf(out, " %12s", s.Name)
		}
		fmt.Fprintln(out)
		for i, y := range p.Years {
			fmt.Fprintf(out, "%-6s", y)
			for _, s := range p.Series {
				fmt.Fprintf(out, " %12.4f", s.Values[i])
			}
			fmt.Fprintln(out)
		}
	}
	for _, a := range d.Table.Anomalies() {
		PrintWarning(a.String())
	}

	path, err := d.ExportChart()
	if err != nil {
		PrintError(err.Error())
		return
	}
	PrintSuccess(fmt.Sprintf("Graphique enregistré : %s", path))
}

func Timelapse(d *delivery.Dashboard) {
	fps, err := ReadInt("Images par seconde [1-30] : ", 1, 30)
	if err != nil {
		PrintError(err.Error())
		return
	}
	path, skipped, err := d.ExportTimelapse(int32(fps))
	if len(skipped) > 0 {
		PrintList("Cartes absentes ignorées :", skipped)
	}
	if err != nil {
		PrintError(err.Error())
		if nerr := notification.SendDiscordErrorNotification(fmt.Sprintf("Nakambé dashboard\n\nError creating timelapse: %s", err.Error())); nerr != nil {
			logging.Warnf("failed to send notification: %v", nerr)
		}
		return
	}
	PrintSuccess(fmt.Sprintf("Timelapse enregistré : %s", path))
	if err := notification.SendDiscordSuccessNotification(fmt.Sprintf("Nakambé dashboard\n\nTimelapse created: %s", path)); err != nil {
		logging.Warnf("failed to send notification: %v", err)
	}
}

func CheckAssets(d *delivery.Dashboard) {
	report := d.CheckAssets(4, out)
	fmt.Fprintln(out)
	for _, s := range report.Statuses {
		switch s.State {
		case delivery.AssetPresent:
			successColor.Fprintf(out, "- %s: %s %dx%d\n", s.Year, s.Format, s.Width, s.Height)
		default:
			warnColor.Fprintf(out, "- %s: %s (%s)\n", s.Year, s.State, s.Path)
		}
	}
	if !report.Complete() {
		PrintWarning(fmt.Sprintf("%d/%d cartes disponibles.", report.Count(delivery.AssetPresent), len(report.Statuses)))
	}
}
