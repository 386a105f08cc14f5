package server

import "net/http"

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexHTML))
}

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<title>glint viewer</title>
<style>
  body { margin: 0; background: #111; color: #ddd; font-family: monospace; }
  #frame { display: block; margin: 20px auto; image-rendering: pixelated; cursor: grab; }
  #status { text-align: center; padding: 8px; }
</style>
</head>
<body>
<img id="frame" width="640" height="360" alt="render">
<div id="status">connecting...</div>
<script>
const img = document.getElementById('frame');
const status = document.getElementById('status');

const source = new EventSource('/api/stream');
source.onmessage = (e) => {
  const frame = JSON.parse(e.data);
  img.src = 'data:image/png;base64,' + frame.imageData;
  img.width = frame.width;
  img.height = frame.height;
  status.textContent = frame.samples.toFixed(0) + ' samples, ' +
    (frame.elapsedMs / 1000).toFixed(1) + 's';
};
source.onerror = () => { status.textContent = 'disconnected'; };

// Drag to orbit the camera
let dragging = false, yaw = 0, pitch = 0;
img.addEventListener('mousedown', () => { dragging = true; });
window.addEventListener('mouseup', () => { dragging = false; });
window.addEventListener('mousemove', (e) => {
  if (!dragging) return;
  yaw -= e.movementX * 0.01;
  pitch = Math.min(Math.max(pitch + e.movementY * 0.01, -1.4), 1.4);
  fetch('/api/camera', {
    method: 'POST',
    headers: {'Content-Type': 'application/json'},
    body: JSON.stringify({yaw: yaw, pitch: pitch, distance: 0}),
  });
});
</script>
</body>
</html>
`
