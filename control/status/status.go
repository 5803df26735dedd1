// Package status serves an HTML page describing what the clock is doing.
package status

import (
	"bytes"
	_ "embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"image/png"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/jrockway/desk-clock/control/calendar"
	"github.com/jrockway/desk-clock/control/face"
	"github.com/jrockway/desk-clock/control/screen"
)

var (
	//go:embed index.html.tmpl
	indexHTML string
	funcMap   = template.FuncMap{
		"hex":      formatHex,
		"seconds":  formatSeconds,
		"segments": formatSegments,
		"image":    formatImage,
	}
	index = template.Must(template.New("index").Funcs(funcMap).Parse(indexHTML))
)

// Status is a snapshot of the clock.
type Status struct {
	Calendar   calendar.Calendar
	Offset     int64
	View       face.View
	Brightness int
	Frame      [face.Digits]uint8
	Levels     [face.Digits]uint16
}

// Page is an http.Handler showing the most recent Status.
type Page struct {
	mu     sync.RWMutex
	status Status
}

// Update replaces the status the page shows.
func (p *Page) Update(s Status) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = s
}

// Status returns the status the page shows.
func (p *Page) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

func (p *Page) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s := p.Status()
	w.Header().Set("content-type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := index.Execute(w, s); err != nil {
		log.Printf("execute template: %v", err)
	}
}

func formatHex(x interface{}) string { return fmt.Sprintf("%#04x", x) }

func formatSeconds(x int64) string { return (time.Duration(x) * time.Second).String() }

// formatSegments lists the lit segments of mask, a through g and then the decimal point.
func formatSegments(mask uint8) string {
	const names = "abcdefg."
	var buf []byte
	for i := 0; i < len(names); i++ {
		if mask&(1<<(7-i)) != 0 {
			buf = append(buf, names[i])
		} else {
			buf = append(buf, '_')
		}
	}
	return string(buf)
}

func formatImage(frame [face.Digits]uint8, levels [face.Digits]uint16) template.URL {
	img := screen.Render(frame, levels)
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		log.Printf("problem encoding image: %v", err)
		return template.URL("data:text/plain,error")
	}
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()))
}
