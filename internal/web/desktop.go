package web

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Desktop is the page shell. Windows are created by operations pushed over /ws/desktop.
func Desktop() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Web Desktop</title>
    <link rel="stylesheet" href="`+assetPath("/static/desktop.css")+`"/>
  </head>
  <body>
    <main id="droppableArea" class="desktop">
      <div id="applications"></div>
    </main>
    <nav class="toolbar">
      <button type="button" data-launch="memory" title="Memory">🧠</button>
      <button type="button" data-launch="chat" title="Chat">💬</button>
      <button type="button" data-launch="hangman" title="Hangman">🪢</button>
    </nav>

    <script>
      const applications = document.getElementById("applications");
      const area = document.getElementById("droppableArea");
      let socket = null;
      let dragged = null;

      function connect() {
        const scheme = location.protocol === "https:" ? "wss://" : "ws://";
        socket = new WebSocket(scheme + location.host + "/ws/desktop");
        socket.onmessage = (event) => {
          const message = JSON.parse(event.data);
          if (message.type === "ops") {
            message.ops.forEach(apply);
          }
        };
        socket.onclose = () => setTimeout(connect, 1000);
      }

      function send(payload) {
        if (socket && socket.readyState === WebSocket.OPEN) {
          socket.send(JSON.stringify(payload));
        }
      }

      function transcript(win) {
        return win ? win.querySelector(".chat-transcript") : null;
      }

      function apply(op) {
        let win = document.getElementById(op.window);
        switch (op.op) {
          case "create": {
            if (win) { win.remove(); }
            win = document.createElement("div");
            win.id = op.window;
            win.className = "window window-" + op.kind;
            win.style.top = op.position.top + "px";
            win.style.left = op.position.left + "px";
            const topbar = document.createElement("div");
            topbar.className = "topbar";
            topbar.draggable = true;
            topbar.textContent = op.title;
            const exit = document.createElement("button");
            exit.type = "button";
            exit.className = "exit";
            exit.textContent = "X";
            topbar.appendChild(exit);
            const content = document.createElement("div");
            content.className = "content";
            win.appendChild(topbar);
            win.appendChild(content);
            applications.appendChild(win);
            break;
          }
          case "move":
            if (win) {
              win.style.top = op.position.top + "px";
              win.style.left = op.position.left + "px";
            }
            break;
          case "raise":
            if (win) { applications.appendChild(win); }
            break;
          case "hide":
            if (win) { win.style.display = "none"; }
            break;
          case "paint":
            if (win) { win.querySelector(".content").innerHTML = op.html; }
            break;
          case "append": {
            const area = transcript(win);
            if (area) { area.insertAdjacentHTML("beforeend", op.html); }
            break;
          }
          case "scroll": {
            const area = transcript(win);
            if (area) { area.scrollTop = op.scroll < 0 ? area.scrollHeight : op.scroll; }
            break;
          }
          case "focus": {
            const input = win ? win.querySelector("input") : null;
            if (input) { input.focus(); }
            break;
          }
        }
      }

      document.querySelectorAll("[data-launch]").forEach((button) => {
        button.addEventListener("click", () => send({ type: "launch", kind: button.dataset.launch }));
      });

      applications.addEventListener("mousedown", (event) => {
        const win = event.target.closest(".window");
        if (!win || event.target.closest(".exit")) { return; }
        const area = transcript(win);
        send({ type: "pointerdown", window: win.id, scroll: area ? Math.round(area.scrollTop) : 0 });
      });

      applications.addEventListener("click", (event) => {
        const win = event.target.closest(".window");
        if (!win) { return; }
        if (event.target.closest(".exit")) {
          send({ type: "close", window: win.id });
          return;
        }
        const target = event.target.closest("[data-action]");
        if (!target || target.tagName === "FORM") { return; }
        const payload = { type: "action", window: win.id, action: target.dataset.action };
        if (target.dataset.index) { payload.index = Number(target.dataset.index); }
        if (target.dataset.tiles) { payload.tiles = Number(target.dataset.tiles); }
        const username = win.querySelector("input[name=username]");
        if (username) { payload.text = username.value; }
        send(payload);
      });

      applications.addEventListener("submit", (event) => {
        const form = event.target.closest("form[data-action]");
        const win = event.target.closest(".window");
        if (!form || !win) { return; }
        event.preventDefault();
        const input = form.elements.text;
        send({ type: "action", window: win.id, action: form.dataset.action, text: input ? input.value : "" });
        if (input) { input.value = ""; }
      });

      applications.addEventListener("dragstart", (event) => {
        const win = event.target.closest(".window");
        if (!win) { return; }
        dragged = win.id;
        event.dataTransfer.setData("text/plain", win.id);
        event.dataTransfer.dropEffect = "move";
        send({ type: "dragstart", window: win.id, x: event.clientX, y: event.clientY });
      });

      area.addEventListener("dragover", (event) => event.preventDefault());

      area.addEventListener("drop", (event) => {
        event.preventDefault();
        const win = dragged ? document.getElementById(dragged) : null;
        const scrolled = transcript(win);
        send({ type: "drop", x: event.clientX, y: event.clientY, scroll: scrolled ? Math.round(scrolled.scrollTop) : 0 });
        dragged = null;
      });

      document.addEventListener("keyup", (event) => {
        if (event.target.tagName === "INPUT") { return; }
        if (["ArrowUp", "ArrowDown", "ArrowLeft", "ArrowRight", "Enter"].includes(event.key)) {
          send({ type: "keyup", key: event.key });
        }
      });

      connect();
    </script>
  </body>
</html>`)
		return err
	})
}
