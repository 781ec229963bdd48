package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/sos-beacon/internal/logic"
	"github.com/sweeney/sos-beacon/internal/status"
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
	"lamp": func(on bool) string {
		if on {
			return "on"
		}
		return "off"
	},
	"pattern": func(m logic.Mode) string {
		var out []byte
		for _, u := range logic.MessageFor(m).Units() {
			switch u {
			case logic.Dot:
				out = append(out, '.')
			case logic.Dash:
				out = append(out, '-')
			case logic.InterSpace:
				out = append(out, ' ')
			}
		}
		return string(out)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>SOS Beacon</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.lamp { display: inline-block; width: 14px; height: 14px; border-radius: 50%; background: #ccc; }
.lamp.dot.on { background: red; }
.lamp.dash.on { background: green; }
.connected { color: green; }
.disconnected { color: red; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; background: orange; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
</style>
</head>
<body>
<h1>SOS Beacon<span id="live-dot" class="live-dot" title="connecting"></span></h1>

<h2>Playback</h2>
<table>
<tr><th>Playing</th><td id="active">{{.Active}}</td></tr>
<tr><th>Pattern</th><td>{{pattern .Active}}</td></tr>
<tr><th>Next message</th><td id="mode">{{.Mode}}</td></tr>
<tr><th>Phase</th><td id="phase">{{.Phase}}</td></tr>
<tr><th>Cursor</th><td id="cursor">{{.Cursor}}</td></tr>
<tr><th>Lamps</th><td><span id="lamp-dot" class="lamp dot {{lamp .Dot}}"></span> <span id="lamp-dash" class="lamp dash {{lamp .Dash}}"></span></td></tr>
<tr><th>Running</th><td>{{if .Running}}yes{{else}}no{{end}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Counts</h2>
<table>
<tr><th>SOS messages</th><td id="sos-cycles">{{.Counts.SOSCycles}}</td></tr>
<tr><th>OK messages</th><td id="ok-cycles">{{.Counts.OKCycles}}</td></tr>
<tr><th>Toggles</th><td id="toggles">{{.Counts.Toggles}}</td></tr>
<tr><th>Ticks</th><td id="ticks">{{.Ticks}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Tick period</th><td>{{.Config.PeriodMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>Pins</th><td>dot {{.Config.PinDot}}, dash {{.Config.PinDash}}, buttons {{.Config.PinButtons}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
<script>
(function() {
  var dot = document.getElementById("live-dot");
  function text(id, v) { document.getElementById(id).textContent = v; }
  function lamp(id, on) {
    var el = document.getElementById(id);
    el.className = el.className.replace(/ (on|off)$/, "") + (on ? " on" : " off");
  }
  function connect() {
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    var ws = new WebSocket(proto + location.host + "/ws");
    ws.onopen = function() { dot.className = "live-dot ok"; dot.title = "live"; };
    ws.onclose = function() {
      dot.className = "live-dot err"; dot.title = "offline";
      setTimeout(connect, 5000);
    };
    ws.onmessage = function(ev) {
      try {
        var s = JSON.parse(ev.data).status;
        text("active", s.active);
        text("mode", s.mode);
        text("phase", s.phase);
        text("cursor", s.cursor);
        text("sos-cycles", s.counts.sos_cycles);
        text("ok-cycles", s.counts.ok_cycles);
        text("toggles", s.counts.toggles);
        text("ticks", s.ticks);
        lamp("lamp-dot", s.outputs.dot);
        lamp("lamp-dash", s.outputs.dash);
      } catch (e) {}
    };
  }
  connect();
})();
</script>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
