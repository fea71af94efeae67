package main

import (
	"html/template"
	"io"
)

// pageTemplate is the document served for an app. The server-rendered
// markup is shown until the first mutation frame replaces it.
var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>reactor: {{.Name}}</title>
</head>
<body>
<div id="app">{{.Markup}}</div>
<script>{{.Client}}</script>
</body>
</html>
`))

type page struct {
	Name   string
	Markup template.HTML
	Client template.JS
}

func writePage(w io.Writer, name, markup string) error {
	return pageTemplate.Execute(w, page{
		Name:   name,
		Markup: template.HTML(markup),
		Client: template.JS(clientJS),
	})
}

// clientJS replays mutation frames into #app and sends listened events
// back. Node 1 is #app.
const clientJS = `(() => {
  const app = document.getElementById("app");
  const nodes = new Map([[1, app]]);
  const handlers = new Map();
  const dec = new TextDecoder(), enc = new TextEncoder();
  let first = true, seq = 0;
  const proto = location.protocol === "https:" ? "wss://" : "ws://";
  const ws = new WebSocket(proto + location.host + "/ws");
  ws.binaryType = "arraybuffer";

  const reader = (buf) => {
    let i = 0;
    const u = () => { let x = 0, s = 1, b; do { b = buf[i++]; x += (b & 0x7f) * s; s *= 128; } while (b & 0x80); return x; };
    const str = () => { const n = u(); const v = dec.decode(buf.subarray(i, i + n)); i += n; return v; };
    return { u, str, byte: () => buf[i++] };
  };

  const send = (node, name, args) => {
    const out = [];
    const u = (x) => { while (x >= 0x80) { out.push((x & 0x7f) | 0x80); x = Math.floor(x / 128); } out.push(x); };
    const s = (v) => { const b = enc.encode(v); u(b.length); out.push(...b); };
    u(++seq); u(node); s(name); u(args.length); args.forEach(s);
    const frame = new Uint8Array(5 + out.length);
    frame[0] = 0x02;
    new DataView(frame.buffer).setUint32(1, out.length);
    frame.set(out, 5);
    ws.send(frame);
  };

  const apply = (r) => {
    r.u();
    const count = r.u();
    for (let k = 0; k < count; k++) {
      const code = r.byte(), id = r.u();
      switch (code) {
      case 0x01: nodes.set(id, document.createElement(r.str())); break;
      case 0x02: nodes.set(id, document.createTextNode(r.str())); break;
      case 0x03: nodes.set(id, document.createComment(r.str())); break;
      case 0x04: { const p = nodes.get(r.u()), ref = r.u(); p.insertBefore(nodes.get(id), ref ? nodes.get(ref) : null); break; }
      case 0x05: { const p = nodes.get(r.u()); p.removeChild(nodes.get(id)); break; }
      case 0x06: nodes.get(id).textContent = r.str(); break;
      case 0x07: { const el = nodes.get(id), k = r.str(), v = r.str(); el.setAttribute(k, v); if (k === "value") el.value = v; break; }
      case 0x08: nodes.get(id).removeAttribute(r.str()); break;
      case 0x09: { const el = nodes.get(id), p = r.str(); el.style.setProperty(p, r.str()); break; }
      case 0x0a: {
        const name = r.str();
        const h = (e) => send(id, name, e.target && "value" in e.target ? [String(e.target.value)] : []);
        handlers.set(id + ":" + name, h);
        nodes.get(id).addEventListener(name, h);
        break;
      }
      case 0x0b: {
        const name = r.str(), key = id + ":" + name;
        nodes.get(id).removeEventListener(name, handlers.get(key));
        handlers.delete(key);
        break;
      }
      case 0x0c: {
        const prefix = id + ":";
        for (const [key, h] of handlers) {
          if (key.startsWith(prefix)) { nodes.get(id).removeEventListener(key.slice(prefix.length), h); handlers.delete(key); }
        }
        nodes.delete(id);
        break;
      }
      }
    }
  };

  ws.onmessage = (msg) => {
    const buf = new Uint8Array(msg.data);
    const type = buf[0], payload = buf.subarray(5);
    if (type === 0x03) {
      const r = reader(payload);
      console.error("reactor:", r.str(), r.str());
      return;
    }
    if (type !== 0x01) return;
    if (first) { app.replaceChildren(); first = false; }
    apply(reader(payload));
  };
})();`
