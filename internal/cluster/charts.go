//    ScreeningGoServer
//    Copyright: E Gunderson 2022-24
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package cluster

import (
	"bytes"
	"fmt"
	"github.com/e-gun/ScreeningGoServer/internal/vv"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/mat"
	"html/template"
	"io"
	"math"
	"regexp"
)

//
// CHARTS
//

// Validator - the go-echarts charts we hand to the page renderer
type Validator interface {
	Validate()
	GetAssets() opts.Assets
}

func newtitle(title string, sub string) opts.Title {
	return opts.Title{
		Title:    title,
		Subtitle: sub,
		Left:     "20",
	}
}

func newtoolbox(name string) opts.Toolbox {
	const (
		SAVETYPE = "svg"
		SAVESTR  = "Save to file..."
	)
	return opts.Toolbox{
		Show:   true,
		Orient: "vertical",
		Left:   "right",
		Feature: &opts.ToolBoxFeature{
			SaveAsImage: &opts.ToolBoxFeatureSaveAsImage{Show: true, Type: SAVETYPE, Name: name, Title: SAVESTR},
		},
	}
}

func clusternames(k int) []string {
	nn := make([]string, k)
	for i := range nn {
		nn[i] = fmt.Sprintf("cluster %d", i)
	}
	return nn
}

// SizesChart - documents and terms per co-cluster
func SizesChart(r *Result) *charts.Bar {
	const (
		TITLE = "Co-cluster sizes"
	)

	ss := r.Sizes()
	docs := make([]opts.BarData, len(ss))
	terms := make([]opts.BarData, len(ss))
	for i, s := range ss {
		docs[i] = opts.BarData{Value: s.Docs}
		terms[i] = opts.BarData{Value: s.Terms}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: vv.DEFAULTCHRTWIDTH, Height: vv.DEFAULTCHRTHEIGHT}),
		charts.WithTitleOpts(newtitle(TITLE, fmt.Sprintf("%d co-clusters", r.K))),
		charts.WithToolboxOpts(newtoolbox(TITLE)),
		charts.WithLegendOpts(opts.Legend{Show: true, Right: "10%"}),
	)
	bar.SetXAxis(clusternames(r.K)).
		AddSeries("documents", docs).
		AddSeries("terms", terms)
	return bar
}

// TopTermsChart - one bar series per co-cluster, its heaviest terms along the axis
func TopTermsChart(tt [][]TermWeight) *charts.Bar {
	return TermsChart("Top terms per co-cluster", "cluster", tt)
}

// TermsChart - one stacked bar series per group of weighted terms; also draws the topic word tables
func TermsChart(title string, series string, tt [][]TermWeight) *charts.Bar {
	var axis []string
	for c, tw := range tt {
		for _, t := range tw {
			axis = append(axis, fmt.Sprintf("%s [%d]", t.Term, c))
		}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: vv.DEFAULTCHRTWIDTH, Height: vv.DEFAULTCHRTHEIGHT}),
		charts.WithTitleOpts(newtitle(title, "")),
		charts.WithToolboxOpts(newtoolbox(title)),
		charts.WithLegendOpts(opts.Legend{Show: true, Right: "10%"}),
	)
	bar.SetXAxis(axis)

	// every series spans the whole axis: the cells that belong to another cluster stay empty
	at := 0
	for c, tw := range tt {
		data := make([]opts.BarData, len(axis))
		for i := range data {
			data[i] = opts.BarData{Value: "-"}
		}
		for _, t := range tw {
			data[at] = opts.BarData{Value: t.Weight}
			at++
		}
		bar.AddSeries(fmt.Sprintf("%s %d", series, c), data, charts.WithBarChartOpts(opts.BarChart{Stack: "terms"}))
	}
	return bar
}

// MatrixChart - the reorganised matrix as a heat map; big matrices are sampled down to about vv.CLUSTERMAXCELLS
func MatrixChart(X mat.Matrix, r *Result) *charts.HeatMap {
	const (
		TITLE = "Reorganised document-term matrix"
	)

	re, _, _ := Reorganise(X, r)
	nr, nc := re.Dims()

	step := 1
	for (nr/step)*(nc/step) > vv.CLUSTERMAXCELLS {
		step++
	}

	var data []opts.HeatMapData
	var xs, ys []int
	maxv := 0.0
	for i := 0; i < nr; i += step {
		ys = append(ys, i)
	}
	for j := 0; j < nc; j += step {
		xs = append(xs, j)
	}
	for y, i := range ys {
		for x, j := range xs {
			v := re.At(i, j)
			maxv = math.Max(maxv, v)
			if v == 0 {
				continue
			}
			data = append(data, opts.HeatMapData{Value: [3]interface{}{x, y, v}})
		}
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: vv.DEFAULTCHRTWIDTH, Height: vv.DEFAULTCHRTHEIGHT}),
		charts.WithTitleOpts(newtitle(TITLE, fmt.Sprintf("%d x %d, every %d", nr, nc, step))),
		charts.WithToolboxOpts(newtoolbox(TITLE)),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Name: "terms"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Name: "documents", Data: ys}),
		charts.WithVisualMapOpts(opts.VisualMap{Calculable: true, Min: 0, Max: float32(maxv)}),
	)
	hm.SetXAxis(xs).AddSeries("counts", data)
	return hm
}

// Render - the html and js for a set of charts, without the page around them
func Render(w io.Writer, cc ...Validator) error {
	// go-echarts is "too clever" and opaque about how to not do things its way
	// we override their page.Render() to yield html+js that can be injected into an existing page

	p := components.NewPage()
	p.Renderer = NewCustomPageRender(p, p.Validate)

	for _, c := range cc {
		c.Validate()
		assets := c.GetAssets()
		for _, v := range assets.JSAssets.Values {
			p.JSAssets.Add(v)
		}
		for _, v := range assets.CSSAssets.Values {
			p.CSSAssets.Add(v)
		}
		p.Charts = append(p.Charts, c)
	}
	p.Validate()

	return p.Render(w)
}

// RenderString - Render into a string
func RenderString(cc ...Validator) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, cc...); err != nil {
		return "", err
	}
	return buf.String(), nil
}

//
// OVERRIDE GO-ECHARTS [original code at https://github.com/go-echarts/go-echarts]
//

// ModRenderer etc modified from https://github.com/go-echarts/go-echarts/render/engine.go
type ModRenderer interface {
	Render(w io.Writer) error
}

type CustomPageRender struct {
	c      interface{}
	before []func()
}

// NewCustomPageRender returns a render implementation for Page.
func NewCustomPageRender(c interface{}, before ...func()) ModRenderer {
	return &CustomPageRender{c: c, before: before}
}

// Render renders the page into the given io.Writer.
func (r *CustomPageRender) Render(w io.Writer) error {
	const (
		TEMPLNAME = "chart"
		PATTERN   = `(__f__")|("__f__)|(__f__)`
	)

	for _, fn := range r.before {
		fn()
	}

	contents := []string{CustomHeaderTpl, CustomBaseTpl, CustomPageTpl}
	tpl := ModMustTemplate(TEMPLNAME, contents)

	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, TEMPLNAME, r.c); err != nil {
		return err
	}

	pat := regexp.MustCompile(PATTERN)
	content := pat.ReplaceAll(buf.Bytes(), []byte(""))

	_, err := w.Write(content)
	return err
}

// ModMustTemplate creates a new template with the given name and parsed contents.
func ModMustTemplate(name string, contents []string) *template.Template {
	const (
		JSNAME = "safeJS"
	)

	tpl := template.Must(template.New(name).Parse(contents[0])).Funcs(template.FuncMap{
		JSNAME: func(s interface{}) template.JS {
			return template.JS(fmt.Sprint(s))
		},
	})

	for _, cont := range contents[1:] {
		tpl = template.Must(tpl.Parse(cont))
	}
	return tpl
}

// CustomHeaderTpl etc. adapted from https://github.com/go-echarts/go-echarts/templates/
var CustomHeaderTpl = `
{{ define "header" }}
<head>
    <meta charset="utf-8">
    <title>{{ .PageTitle }}</title>
{{- range .JSAssets.Values }}
    <script src="{{ . }}"></script>
{{- end }}
{{- range .CSSAssets.Values }}
    <link href="{{ . }}" rel="stylesheet">
{{- end }}
</head>
{{ end }}
`

var CustomBaseTpl = `
{{- define "base" }}
<div class="container">
    <div class="item" id="{{ .ChartID }}" style="width:{{ .Initialization.Width }};height:{{ .Initialization.Height }};"></div>
</div>
<script type="text/javascript">
    "use strict";
    let goecharts_{{ .ChartID | safeJS }} = echarts.init(document.getElementById('{{ .ChartID | safeJS }}'), "{{ .Theme }}");
    let option_{{ .ChartID | safeJS }} = {{ .JSONNotEscaped | safeJS }};
    goecharts_{{ .ChartID | safeJS }}.setOption(option_{{ .ChartID | safeJS }});
</script>
{{ end }}
`

var CustomPageTpl = `
{{- define "chart" }}
	<div class="box"> {{- range .Charts }} {{ template "base" . }} {{- end }} </div>
{{ end }}
`
