package web

const notFoundTemplate = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>404 | Use Diagram</title></head>
<body style="font-family:sans-serif;display:flex;height:100vh;align-items:center;justify-content:center;margin:0">
<div><h1>404</h1><p>This diagram could not be found.</p><p><a href="/">Start a new diagram</a></p></div>
</body>
</html>
`

const editorTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { margin: 0; font-family: sans-serif; display: flex; flex-direction: column; height: 100vh; }
header { display: flex; gap: .5rem; align-items: center; padding: .5rem 1rem; border-bottom: 1px solid #e2e8f0; height: 26px; }
header .spacer { flex: 1; }
main { flex: 1; display: flex; min-height: 0; }
#sidebar { width: 450px; border-right: 1px solid #e2e8f0; display: flex; }
#sidebar.hidden { display: none; }
#source { flex: 1; border: 0; padding: 1rem; font: 14px/1.4 monospace; resize: none; tab-size: 2; }
#viewport { flex: 1; position: relative; overflow: hidden; background: #f9fafb; }
#preview { transform-origin: 0 0; position: absolute; }
#zoom { position: absolute; left: 1rem; bottom: 1rem; display: flex; flex-direction: column; gap: .25rem; }
#exports { position: absolute; right: 1rem; top: 1rem; display: flex; gap: .25rem; }
#toast { position: fixed; bottom: 1rem; right: 1rem; background: #b91c1c; color: #fff; padding: .75rem 1rem; border-radius: 4px; display: none; }
#toast.info { background: #1e293b; }
#state { color: #64748b; font-size: 12px; }
</style>
</head>
<body>
<header>
  <button id="toggle-sidebar" type="button">Editor</button>
  <strong>Use Diagram</strong>
  <span id="kind">{{.Kind}}</span>
  <span id="state">idle</span>
  <span class="spacer"></span>
  {{if not .ReadOnly}}<button id="share" type="button">Share</button>{{end}}
</header>
<main>
  <div id="sidebar"><textarea id="source" spellcheck="false" {{if .ReadOnly}}readonly{{end}}>{{.Content}}</textarea></div>
  <div id="viewport">
    <div id="preview"></div>
    <div id="exports">
      <button id="export-svg" type="button">SVG</button>
      {{if eq .Kind "plantuml"}}<button id="export-png" type="button">PNG</button>{{end}}
    </div>
    <div id="zoom">
      <button id="zoom-in" type="button" title="Zoom in">+</button>
      <button id="zoom-out" type="button" title="Zoom out">-</button>
      <button id="reset" type="button" title="Reset">Reset</button>
    </div>
  </div>
</main>
<div id="toast"></div>
<script>
(function () {
  var params = new URLSearchParams({kind: {{.Kind}}});
  {{if .ShareID}}params.set("share", {{.ShareID}});{{end}}
  var scheme = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(scheme + location.host + "/ws/session?" + params.toString());
  var source = document.getElementById("source");
  var preview = document.getElementById("preview");
  var viewport = document.getElementById("viewport");
  var toast = document.getElementById("toast");
  var pngButton = document.getElementById("export-png");

  function send(msg) { if (ws.readyState === 1) ws.send(JSON.stringify(msg)); }
  function sendSize() {
    send({type: "resize", width: viewport.clientWidth, height: viewport.clientHeight});
  }
  function on(id, fn) { var el = document.getElementById(id); if (el) el.addEventListener("click", fn); }

  ws.onopen = function () {
    sendSize();
    {{if not .ShareID}}send({type: "edit", content: source.value});{{end}}
  };
  ws.onmessage = function (ev) {
    var f = JSON.parse(ev.data);
    switch (f.type) {
    case "state": document.getElementById("state").textContent = f.state; break;
    case "render": preview.innerHTML = f.svg; break;
    case "clear": preview.innerHTML = ""; break;
    case "viewport":
      preview.style.transform = "translate(" + f.viewport.x + "px," + f.viewport.y + "px) scale(" + f.viewport.scale + ")";
      break;
    case "toast":
      toast.textContent = f.message; toast.className = f.level; toast.style.display = "block";
      setTimeout(function () { toast.style.display = "none"; }, 4000);
      break;
    case "dismiss": toast.style.display = "none"; break;
    case "downloading": if (pngButton) pngButton.disabled = f.active; break;
    case "download":
      var a = document.createElement("a");
      a.href = f.url; a.download = f.name;
      document.body.appendChild(a); a.click(); document.body.removeChild(a);
      break;
    case "shared": prompt("Share link", location.origin + f.url); break;
    case "ui": document.getElementById("sidebar").className = f.ui.show_sidebar ? "" : "hidden"; sendSize(); break;
    case "error": console.error(f.message); break;
    }
  };

  {{if not .ShareID}}source.addEventListener("input", function () { send({type: "edit", content: source.value}); });{{end}}
  window.addEventListener("resize", sendSize);
  on("zoom-in", function () { send({type: "zoom_in"}); });
  on("zoom-out", function () { send({type: "zoom_out"}); });
  on("reset", function () { send({type: "reset"}); });
  on("export-svg", function () { send({type: "export_svg"}); });
  on("export-png", function () { send({type: "export_png"}); });
  on("share", function () { send({type: "share"}); });
  on("toggle-sidebar", function () { send({type: "toggle_sidebar"}); });
})();
</script>
</body>
</html>
`
