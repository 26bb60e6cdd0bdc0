// Chinook Dashboard - Music Store Sales Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chinookdash

package dashboard

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/tomtom215/chinookdash/internal/database"
	"github.com/tomtom215/chinookdash/internal/format"
	"github.com/tomtom215/chinookdash/internal/models"
)

// theme holds the Plotly template and colors for a color scheme.
type theme struct {
	name     string
	template string
	fontSize int
	land     string
	lakes    string
}

func themeFor(scheme string) theme {
	if scheme == "dark" {
		return theme{name: "dark", template: "plotly_dark", fontSize: 15, land: "#3a3a3a", lakes: "#1f2630"}
	}
	return theme{name: "light", template: "plotly_white", fontSize: 15, land: "darkgrey", lakes: "white"}
}

// viridis is the Viridis scale sampled at ten stops.
var viridis = []string{
	"#440154", "#482878", "#3e4989", "#31688e", "#26828e",
	"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725",
}

// colorsFor samples n colors from reversed Viridis, darkest last.
func colorsFor(n int) []string {
	out := make([]string, n)
	for i := 0; i < n; i++ {
		idx := 0
		if n > 1 {
			idx = int(math.Round(float64(i) * float64(len(viridis)-1) / float64(n-1)))
		}
		out[i] = viridis[len(viridis)-1-idx]
	}
	return out
}

func (t theme) layout(title string) map[string]interface{} {
	l := map[string]interface{}{
		"template": t.template,
		"font":     map[string]interface{}{"family": "Inter", "size": t.fontSize},
		"margin":   map[string]interface{}{"l": 40, "r": 40, "t": 60, "b": 40},
	}
	if title != "" {
		l["title"] = map[string]interface{}{"text": title, "x": 0.5}
	}
	return l
}

// emptyFigure is shown in place of a chart when the filters match nothing.
func (t theme) emptyFigure(message string) models.Figure {
	if message == "" {
		message = "No data available for selected filters"
	}
	l := t.layout("")
	l["height"] = 200
	l["margin"] = map[string]interface{}{"l": 30, "r": 30, "t": 30, "b": 30}
	l["xaxis"] = map[string]interface{}{"visible": false}
	l["yaxis"] = map[string]interface{}{"visible": false}
	l["annotations"] = []map[string]interface{}{{
		"text":      message,
		"showarrow": false,
		"xref":      "paper",
		"yref":      "paper",
		"x":         0.5,
		"y":         0.5,
		"font":      map[string]interface{}{"size": 16},
	}}
	return models.Figure{Data: []models.Trace{}, Layout: l}
}

// timeseriesFigure plots metric per month.
func (t theme) timeseriesFigure(points []database.MonthlyPoint, metric string) models.Figure {
	if len(points) == 0 {
		return t.emptyFigure("")
	}
	x := make([]string, len(points))
	y := make([]float64, len(points))
	for i, p := range points {
		x[i] = p.Month
		y[i], _ = p.Metric(metric)
	}
	label := database.MetricLabel(metric)

	l := t.layout(fmt.Sprintf("Monthly %s", label))
	l["xaxis"] = map[string]interface{}{"title": map[string]interface{}{"text": "Month"}, "type": "date"}
	l["yaxis"] = map[string]interface{}{"title": map[string]interface{}{"text": label}}
	l["hovermode"] = "x unified"

	return models.Figure{
		Data: []models.Trace{{
			"type":          "scatter",
			"mode":          "lines+markers",
			"name":          label,
			"x":             x,
			"y":             y,
			"hovertemplate": "%{x|%b %Y}<br>%{y:,.2f}<extra></extra>",
		}},
		Layout: l,
	}
}

// yearValue is one stacked segment of a group bar chart.
type yearValue struct {
	Year  string
	Group string
	Value float64
}

func groupYearValues(rows []database.GroupYear, metric string) []yearValue {
	out := make([]yearValue, 0, len(rows))
	for _, r := range rows {
		v, _ := r.Metric(metric)
		out = append(out, yearValue{Year: r.Year, Group: r.GroupVal, Value: v})
	}
	return out
}

func geoYearValues(rows []database.GeoRow, metric string) []yearValue {
	out := make([]yearValue, 0, len(rows))
	for _, r := range rows {
		v, _ := r.Metric(metric)
		out = append(out, yearValue{Year: r.Year, Group: r.Country, Value: v})
	}
	return out
}

// groupBarFigure stacks one trace per year across the top n groups by
// total metric.
func (t theme) groupBarFigure(values []yearValue, g database.Group, metric string, n int) models.Figure {
	if len(values) == 0 {
		return t.emptyFigure("")
	}

	totals := make(map[string]float64)
	years := make(map[string]struct{})
	for _, v := range values {
		totals[v.Group] += v.Value
		years[v.Year] = struct{}{}
	}
	groups := make([]string, 0, len(totals))
	for k := range totals {
		groups = append(groups, k)
	}
	sort.Slice(groups, func(i, j int) bool {
		if totals[groups[i]] != totals[groups[j]] {
			return totals[groups[i]] > totals[groups[j]]
		}
		return groups[i] < groups[j]
	})
	if n > 0 && len(groups) > n {
		groups = groups[:n]
	}
	keep := make(map[string]int, len(groups))
	for i, k := range groups {
		keep[k] = i
	}

	yearList := make([]string, 0, len(years))
	for y := range years {
		yearList = append(yearList, y)
	}
	sort.Strings(yearList)
	colors := colorsFor(len(yearList))

	label := database.MetricLabel(metric)
	traces := make([]models.Trace, 0, len(yearList))
	for i, year := range yearList {
		y := make([]interface{}, len(groups))
		for _, v := range values {
			if v.Year != year {
				continue
			}
			if idx, ok := keep[v.Group]; ok {
				y[idx] = v.Value
			}
		}
		traces = append(traces, models.Trace{
			"type":          "bar",
			"name":          year,
			"x":             groups,
			"y":             y,
			"marker":        map[string]interface{}{"color": colors[i]},
			"hovertemplate": "%{x}<br>" + year + ": %{y:,.2f}<extra></extra>",
		})
	}

	l := t.layout(fmt.Sprintf("%s Performance: %s - Top %d", g.Label(), label, len(groups)))
	l["barmode"] = "stack"
	l["height"] = 450
	l["legend"] = map[string]interface{}{"title": map[string]interface{}{"text": "Year"}}
	l["xaxis"] = map[string]interface{}{
		"title":         map[string]interface{}{"text": g.Label()},
		"categoryorder": "array",
		"categoryarray": groups,
	}
	l["yaxis"] = map[string]interface{}{"title": map[string]interface{}{"text": label}}
	return models.Figure{Data: traces, Layout: l}
}

// geoFigure draws a choropleth with one animation frame per year.
// Aggregate mode has a single "All" frame and no controls.
func (t theme) geoFigure(rows []database.GeoRow, metric string) models.Figure {
	if len(rows) == 0 {
		return t.emptyFigure("No data available.")
	}
	label := database.MetricLabel(metric)

	byYear := make(map[string][]database.GeoRow)
	zmin, zmax := math.Inf(1), math.Inf(-1)
	for _, r := range rows {
		byYear[r.Year] = append(byYear[r.Year], r)
		v, _ := r.Metric(metric)
		zmin = math.Min(zmin, v)
		zmax = math.Max(zmax, v)
	}
	years := make([]string, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Strings(years)

	trace := func(year string) models.Trace {
		rs := byYear[year]
		locs := make([]string, 0, len(rs))
		z := make([]float64, 0, len(rs))
		text := make([]string, 0, len(rs))
		for _, r := range rs {
			iso := format.ISO3(r.Country)
			if iso == "" {
				continue
			}
			v, _ := r.Metric(metric)
			locs = append(locs, iso)
			z = append(z, v)
			text = append(text, format.CountryName(r.Country))
		}
		return models.Trace{
			"type":          "choropleth",
			"locationmode":  "ISO-3",
			"locations":     locs,
			"z":             z,
			"text":          text,
			"zmin":          zmin,
			"zmax":          zmax,
			"colorscale":    "Viridis",
			"reversescale":  true,
			"colorbar":      map[string]interface{}{"title": map[string]interface{}{"text": label}},
			"hovertemplate": "%{text}<br>" + label + ": %{z:,.2f}<extra>" + year + "</extra>",
		}
	}

	l := t.layout(fmt.Sprintf("%s by Country", label))
	l["height"] = 550
	l["geo"] = map[string]interface{}{
		"showframe":      false,
		"showcoastlines": true,
		"showland":       true,
		"landcolor":      t.land,
		"showlakes":      true,
		"lakecolor":      t.lakes,
		"projection":     map[string]interface{}{"type": "natural earth"},
	}

	fig := models.Figure{Data: []models.Trace{trace(years[0])}, Layout: l}
	if len(years) == 1 {
		return fig
	}

	steps := make([]map[string]interface{}, 0, len(years))
	for _, y := range years {
		fig.Frames = append(fig.Frames, models.Frame{Name: y, Data: []models.Trace{trace(y)}})
		steps = append(steps, map[string]interface{}{
			"label":  y,
			"method": "animate",
			"args": []interface{}{
				[]string{y},
				map[string]interface{}{"mode": "immediate", "frame": map[string]interface{}{"duration": 500, "redraw": true}, "transition": map[string]interface{}{"duration": 0}},
			},
		})
	}
	l["updatemenus"] = []map[string]interface{}{{
		"type":       "buttons",
		"showactive": false,
		"x":          0.05,
		"y":          0,
		"buttons": []map[string]interface{}{
			{"label": "Play", "method": "animate", "args": []interface{}{nil, map[string]interface{}{"frame": map[string]interface{}{"duration": 800, "redraw": true}, "fromcurrent": true}}},
			{"label": "Pause", "method": "animate", "args": []interface{}{[]interface{}{nil}, map[string]interface{}{"mode": "immediate", "frame": map[string]interface{}{"duration": 0, "redraw": false}}}},
		},
	}}
	l["sliders"] = []map[string]interface{}{{
		"active":       0,
		"currentvalue": map[string]interface{}{"prefix": "Year: "},
		"steps":        steps,
	}}
	return fig
}

// decayFigure plots the share of customers retained at each month offset.
func (t theme) decayFigure(points []database.DecayPoint) models.Figure {
	if len(points) == 0 {
		return t.emptyFigure("")
	}
	x := make([]int64, len(points))
	y := make([]float64, len(points))
	custom := make([][]int64, len(points))
	for i, p := range points {
		x[i] = p.MonthOffset
		y[i] = p.RetentionRate * 100
		custom[i] = []int64{p.NumRetained, p.NumCustomers}
	}
	l := t.layout("Customer Retention Decay")
	l["xaxis"] = map[string]interface{}{"title": map[string]interface{}{"text": "Months Since First Purchase"}, "dtick": 3}
	l["yaxis"] = map[string]interface{}{"title": map[string]interface{}{"text": "Customers Retained"}, "range": []int{0, 100}, "ticksuffix": "%"}
	return models.Figure{
		Data: []models.Trace{{
			"type":          "scatter",
			"mode":          "lines+markers",
			"name":          "Retention",
			"x":             x,
			"y":             y,
			"customdata":    custom,
			"hovertemplate": "Month %{x}<br>%{y:.2f}% (%{customdata[0]} of %{customdata[1]})<extra></extra>",
		}},
		Layout: l,
	}
}

// cohortFigure draws the cohort by offset heatmap. Cells a cohort never
// reached are null.
func (t theme) cohortFigure(cells []database.CohortCell) models.Figure {
	if len(cells) == 0 {
		return t.emptyFigure("")
	}
	months := make(map[time.Time]struct{})
	var maxOffset int64
	for _, c := range cells {
		months[c.CohortMonth] = struct{}{}
		if c.MonthOffset > maxOffset {
			maxOffset = c.MonthOffset
		}
	}
	cohorts := make([]time.Time, 0, len(months))
	for m := range months {
		cohorts = append(cohorts, m)
	}
	sort.Slice(cohorts, func(i, j int) bool { return cohorts[i].Before(cohorts[j]) })
	row := make(map[time.Time]int, len(cohorts))
	labels := make([]string, len(cohorts))
	for i, m := range cohorts {
		row[m] = i
		labels[i] = m.Format("Jan 2006")
	}

	offsets := make([]int64, maxOffset+1)
	for i := range offsets {
		offsets[i] = int64(i)
	}
	z := make([][]interface{}, len(cohorts))
	for i := range z {
		z[i] = make([]interface{}, len(offsets))
	}
	for _, c := range cells {
		z[row[c.CohortMonth]][c.MonthOffset] = math.Round(c.RetentionPct*10000) / 100
	}

	l := t.layout("Customer Retention by Cohort")
	l["height"] = 600
	l["xaxis"] = map[string]interface{}{"title": map[string]interface{}{"text": "Months Since First Purchase"}, "dtick": 3}
	l["yaxis"] = map[string]interface{}{"title": map[string]interface{}{"text": "Cohort"}, "autorange": "reversed", "type": "category"}
	return models.Figure{
		Data: []models.Trace{{
			"type":          "heatmap",
			"x":             offsets,
			"y":             labels,
			"z":             z,
			"zmin":          0,
			"zmax":          100,
			"colorscale":    "Viridis",
			"colorbar":      map[string]interface{}{"title": map[string]interface{}{"text": "Retained"}, "ticksuffix": "%"},
			"hoverongaps":   false,
			"hovertemplate": "%{y}<br>Month %{x}: %{z:.2f}%<extra></extra>",
		}},
		Layout: l,
	}
}
