/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"html"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/Seednode/partyhost/games/room"
)

const pageStyle = `html,body{height:100%;margin:0;font-family:sans-serif;text-align:center;}` +
	`main{display:flex;flex-direction:column;justify-content:center;align-items:center;height:100%;}` +
	`a{text-decoration:none;color:inherit;}code{font-size:3em;letter-spacing:.2em;}`

// newPage wraps body, which must already be escaped, in a bare document.
func newPage(title, body string) string {
	var b strings.Builder

	b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
	b.WriteString(`<meta name="viewport" content="width=device-width,initial-scale=1">`)
	b.WriteString(`<style>` + pageStyle + `</style>`)
	b.WriteString(`<title>` + html.EscapeString(title) + `</title></head>`)
	b.WriteString(`<body><main>` + body + `</main></body></html>`)

	return b.String()
}

// joinPage is what a scanned room QR code lands on.
func joinPage(cfg *Config, code string) string {
	esc := html.EscapeString(code)

	return newPage("Join room "+code,
		`<p>Room code</p><code>`+esc+`</code>`+
			`<img alt="QR code for room `+esc+`" width="`+strconv.Itoa(qrSize)+`" src="`+
			html.EscapeString(cfg.prefix)+`/room/`+esc+`/qr">`)
}

func serveHomePage(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		body := newPage("partyhost", `<a href="`+html.EscapeString(cfg.prefix)+`/">partyhost v`+releaseVersion+`</a>`)

		code := room.Normalize(r.URL.Query().Get("room"))
		if code != "" {
			if !room.ValidCode(code) {
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				securityHeaders(cfg, w)
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(newPage("Invalid room", "That room code is not valid.")))
				return
			}
			body = joinPage(cfg, code)
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)

		written, err := w.Write([]byte(body))
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Home page (%s) to %s in %s",
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func serveRobots(cfg *Config, errs chan<- error) httprouter.Handle {
	data := strings.Join([]string{
		"User-agent: *",
		"Disallow: " + cfg.prefix + "/ws",
		"Disallow: " + cfg.prefix + "/room/",
	}, "\n")

	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		securityHeaders(cfg, w)

		if _, err := w.Write([]byte(data)); err != nil {
			errs <- err
		}
	}
}
