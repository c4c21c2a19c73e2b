package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/knock-sensor/internal/logic"
	"github.com/sweeney/knock-sensor/internal/status"
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
	"modeOrUnknown": func(m logic.Mode) string {
		if m == "" {
			return "UNKNOWN"
		}
		return string(m)
	},
	"outcomeClass": func(e logic.EventType) string {
		switch e {
		case logic.EventKnockMatch:
			return "match"
		case logic.EventKnockMismatch:
			return "mismatch"
		}
		return "enrolled"
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Knock Sensor</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.match { color: green; font-weight: bold; }
.mismatch { color: red; font-weight: bold; }
.enrolled { color: #b8860b; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
</style>
</head>
<body>
<h1>Knock Sensor{{if .Config.WSBroker}}<span id="live-dot" class="live-dot pending" title="connecting"></span>{{end}}</h1>

<h2>Lock</h2>
<table>
<tr><th>Mode</th><td id="mode">{{modeOrUnknown .Mode}}</td></tr>
<tr><th>Reference</th><td>{{.ReferenceLength}} knocks</td></tr>
{{with .Last}}<tr><th>Last outcome</th><td id="last-event" class="{{outcomeClass .Event}}">{{.Event}}</td></tr>
<tr><th>Match</th><td id="last-percent">{{if .Reason}}{{printf "%.2f" .Percent}}% ({{.Reason}}){{else}}n/a{{end}}</td></tr>
<tr><th>Knocks</th><td id="last-knocks">{{.Knocks}}</td></tr>
<tr><th>At</th><td id="last-at">{{.At.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>{{else}}<tr><th>Last outcome</th><td id="last-event">none</td></tr>
<tr><th>Match</th><td id="last-percent">n/a</td></tr>
<tr><th>Knocks</th><td id="last-knocks">n/a</td></tr>
<tr><th>At</th><td id="last-at">n/a</td></tr>{{end}}
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Attempts</th><td>{{.Counts.Attempts}}</td></tr>
<tr><th>Matches</th><td>{{.Counts.Matches}}</td></tr>
<tr><th>Mismatches</th><td>{{.Counts.Mismatches}}</td></tr>
<tr><th>Enrollments</th><td>{{.Counts.Enrollments}}</td></tr>
<tr><th>Door openings</th><td>{{.Counts.DoorOpenings}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Record timeout</th><td>{{.Config.TimeoutMs}}ms</td></tr>
<tr><th>Max knocks</th><td>{{.Config.MaxKnocks}}</td></tr>
<tr><th>Tolerance</th><td>{{.Config.TolerancePct}}%</td></tr>
<tr><th>Threshold</th><td>{{.Config.Threshold}}</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> | <a href="/outcome.json">last outcome</a></p>
{{if .Config.WSBroker}}
<script src="/mqtt.min.js"></script>
<script>
(function() {
  var broker = "{{.Config.WSBroker}}";
  var topic = "security/knock/sensor/events";
  var dot = document.getElementById("live-dot");
  var modeEl = document.getElementById("mode");
  var eventEl = document.getElementById("last-event");
  var pctEl = document.getElementById("last-percent");
  var knocksEl = document.getElementById("last-knocks");
  var atEl = document.getElementById("last-at");

  function setDot(cls, title) {
    dot.className = "live-dot " + cls;
    dot.title = title;
  }

  function setOutcome(k) {
    eventEl.textContent = k.event;
    eventEl.className = k.event === "KNOCK_MATCH" ? "match" : k.event === "KNOCK_MISMATCH" ? "mismatch" : "enrolled";
    pctEl.textContent = k.reason ? (k.match_percent || 0).toFixed(2) + "% (" + k.reason + ")" : "n/a";
    knocksEl.textContent = k.knocks || 0;
    atEl.textContent = k.timestamp;
  }

  var client = mqtt.connect(broker, { reconnectPeriod: 5000 });

  client.on("connect", function() {
    setDot("ok", "live");
    client.subscribe(topic);
  });

  client.on("reconnect", function() {
    setDot("pending", "reconnecting");
  });

  client.on("offline", function() {
    setDot("err", "offline");
  });

  client.on("error", function() {
    setDot("err", "error");
  });

  client.on("message", function(t, payload) {
    try {
      var msg = JSON.parse(payload.toString());
      if (!msg.knock) {
        return;
      }
      modeEl.textContent = msg.knock.mode;
      if (msg.knock.attempt_id) {
        setOutcome(msg.knock);
      }
    } catch (e) {}
  });
})();
</script>
{{end}}
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
