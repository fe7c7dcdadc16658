package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/rep-counter/internal/status"
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
	"clock": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format("15:04:05")
	},
	"flex": func(v float32) string {
		return fmt.Sprintf("%.1f", v)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Rep Counter</title>
<style>
body { font-family: monospace; max-width: 720px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.success { color: green; font-weight: bold; }
.fail { color: #c60; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
#chart { width: 100%; height: 200px; border: 1px solid #ddd; }
</style>
</head>
<body>
<h1>Rep Counter<span id="live-dot" class="live-dot pending" title="connecting"></span></h1>

<h2>Session</h2>
<table>
<tr><th>Reps</th><td id="reps">{{.Reps}}</td></tr>
<tr><th>Success</th><td class="success">{{.Successes}}</td></tr>
<tr><th>Fail</th><td class="fail">{{.Fails}}</td></tr>
<tr><th>First rep</th><td>{{clock .FirstRepAt}}</td></tr>
<tr><th>Last rep</th><td>{{clock .LastRepAt}}</td></tr>
<tr><th>Mean magnitude</th><td>{{printf "%.4f" .MeanMagnitude}}</td></tr>
</table>

<h2>Latest</h2>
<table>
{{if .HasRecord}}<tr><th>Time</th><td id="time">{{clock .Latest.Time}}</td></tr>
<tr><th>Flex</th><td id="flex">{{flex .Latest.Record.Flex}}</td></tr>
<tr><th>Direction</th><td id="dir">{{.Latest.Record.Direction}}</td></tr>
<tr><th>Magnitude</th><td id="mag">{{printf "%.4f" .Latest.Record.Magnitude}}</td></tr>
{{else}}<tr><td colspan="2">No data yet</td></tr>{{end}}
</table>
<canvas id="chart"></canvas>

<h2>System</h2>
<table>
<tr><th>Serial</th><td class="{{if .SerialConnected}}connected{{else}}disconnected{{end}}">{{if .SerialConnected}}connected{{else}}disconnected{{end}} {{.Config.Port}}</td></tr>
<tr><th>Records</th><td>{{.Records}} ({{.Skipped}} skipped)</td></tr>
<tr><th>CSV</th><td>{{if .Config.CSVPath}}{{.Config.CSVPath}}{{else}}disabled{{end}}</td></tr>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> &middot; <a href="/latest">latest</a> &middot; <a href="/data">data</a></p>
<script>
(function() {
  var dot = document.getElementById("live-dot");
  var canvas = document.getElementById("chart");
  var ctx = canvas.getContext("2d");
  var points = [];
  var maxPoints = 500;

  function setDot(cls, title) {
    dot.className = "live-dot " + cls;
    dot.title = title;
  }

  function set(id, v) {
    var el = document.getElementById(id);
    if (el) { el.textContent = v; }
  }

  function draw() {
    canvas.width = canvas.clientWidth;
    canvas.height = canvas.clientHeight;
    ctx.clearRect(0, 0, canvas.width, canvas.height);
    if (points.length < 2) { return; }
    var max = 1;
    points.forEach(function(p) { if (p > max) { max = p; } });
    ctx.beginPath();
    points.forEach(function(p, i) {
      var x = i * canvas.width / (maxPoints - 1);
      var y = canvas.height - p / max * canvas.height;
      if (i === 0) { ctx.moveTo(x, y); } else { ctx.lineTo(x, y); }
    });
    ctx.stroke();
  }

  function push(rec) {
    points.push(rec.flex);
    if (points.length > maxPoints) { points.shift(); }
  }

  fetch("/data").then(function(r) { return r.json(); }).then(function(rows) {
    rows.forEach(push);
    draw();
  }).catch(function() {});

  function connect() {
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    var ws = new WebSocket(proto + location.host + "/ws");
    ws.onopen = function() { setDot("ok", "live"); };
    ws.onclose = function() {
      setDot("err", "offline");
      setTimeout(connect, 5000);
    };
    ws.onmessage = function(ev) {
      try {
        var rec = JSON.parse(ev.data);
        set("time", rec.time);
        set("flex", rec.flex.toFixed(1));
        set("dir", rec.direction);
        set("mag", rec.magnitude.toFixed(4));
        set("reps", rec.rep_count);
        push(rec);
        draw();
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
