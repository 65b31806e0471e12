package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/button-panel/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"labelOrUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
	"percent": func(v uint8) int {
		return int(v) * 100 / 255
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="2">
<title>Button Panel</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
pre { background: #111; color: #8cf; padding: 8px; }
.bar { display: inline-block; height: 10px; background: #e80; vertical-align: middle; }
.active { color: green; font-weight: bold; }
.idle { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Button Panel</h1>

<h2>Display</h2>
<pre id="display">{{.Panel.Text}}</pre>

<h2>State</h2>
<table>
<tr><th>Mode</th><td id="mode">{{labelOrUnknown .Panel.Label}} ({{.Panel.ModeIndex}})</td></tr>
<tr><th>Overlay</th><td id="overlay" class="{{if .Panel.Overlay.Active}}active{{else}}idle{{end}}">{{if .Panel.Overlay.Kind}}{{.Panel.Overlay.Kind}}{{else}}NONE{{end}}</td></tr>
{{if .Panel.Overlay.Tone.Sounding}}<tr><th>Tone</th><td>{{.Panel.Overlay.Tone.Hz}}Hz</td></tr>{{end}}
<tr><th>Holding</th><td>{{if .Panel.AwaitingRelease}}yes{{else}}no{{end}}</td></tr>
<tr><th>Ready</th><td>{{if .Ready}}yes{{else}}no{{end}}</td></tr>
</table>

<h2>LEDs</h2>
<table>
{{range $i, $v := .Panel.LEDs}}<tr><th>LED {{$i}}</th><td><span class="bar" style="width: {{percent $v}}px"></span> {{$v}}</td></tr>
{{end}}</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}: {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Advance</th><td>{{.Panel.Counts.Advance}}</td></tr>
<tr><th>Reset</th><td>{{.Panel.Counts.Reset}}</td></tr>
<tr><th>Short press</th><td>{{.Panel.Counts.Short}}</td></tr>
<tr><th>Long press</th><td>{{.Panel.Counts.Long}}</td></tr>
<tr><th>Bounces</th><td>{{.Bounces}}</td></tr>
</table>

<h2>Buttons</h2>
<table>
<tr><th>Name</th><td>edges / ignored / confirmed / bounces</td></tr>
{{range .Buttons}}<tr><th>{{.Name}}</th><td>{{.Edges}} / {{.Ignored}} / {{.Confirmed}} / {{.Bounces}}</td></tr>
{{end}}</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Cycle</th><td>{{.Config.CycleMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>Long press</th><td>{{.Config.LongPressMs}}ms</td></tr>
<tr><th>Advance policy</th><td>{{.Config.AdvancePolicy}}</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> | <a href="/display.txt">Display</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() and Bounces() methods but the template wants fields.
	data := struct {
		status.Snapshot
		Uptime  time.Duration
		Bounces uint64
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Bounces:  snap.Bounces(),
	}
	indexTmpl.Execute(w, data)
}
