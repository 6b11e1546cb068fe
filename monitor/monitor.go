package monitor

import (
	"os"
	"time"

	"consortium-planner-api/config"

	"github.com/gin-gonic/gin"
)

var startedAt = time.Now()

// RegisterMonitorPage serves a small operational status page: process
// uptime and database reachability, refreshed from the browser.
func RegisterMonitorPage(router *gin.Engine) {
	router.GET("/monitor", func(c *gin.Context) {
		c.Data(200, "text/html; charset=utf-8", []byte(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1.0" />
  <title>Consortium Planner Monitor</title>
  <style>
    body {
      background: #0f1320;
      color: #e0e0e0;
      font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
      max-width: 900px;
      margin: 0 auto;
      padding: 20px;
    }
    h1 { color: #a5b4fc; }
    .card {
      background: rgba(255, 255, 255, 0.05);
      border: 1px solid rgba(255, 255, 255, 0.1);
      border-radius: 12px;
      padding: 1.25rem;
      margin-bottom: 1.5rem;
    }
    #logs {
      background: rgba(0, 0, 0, 0.3);
      padding: 1rem;
      border-radius: 8px;
      max-height: 480px;
      overflow-y: auto;
      white-space: pre-wrap;
      font-family: 'Monaco', 'Consolas', monospace;
      font-size: 0.85rem;
    }
  </style>
</head>
<body>
  <h1>Consortium Planner Monitor</h1>
  <div class="card" id="status">Checking...</div>
  <div class="card"><pre id="logs">Loading logs...</pre></div>
  <script>
    function fetchStatus() {
      fetch('/monitor/status')
        .then(res => res.json())
        .then(data => {
          document.getElementById('status').textContent =
            'API: up ' + data.uptime + ' | Database: ' + (data.database_ok ? 'online' : 'OFFLINE');
        })
        .catch(() => {
          document.getElementById('status').textContent = 'API: unreachable';
        });
    }
    function fetchLogs() {
      fetch('/logs?token=' + (new URLSearchParams(location.search).get('token') || ''))
        .then(res => res.text())
        .then(data => {
          const el = document.getElementById('logs');
          el.textContent = data;
          el.scrollTop = el.scrollHeight;
        });
    }
    fetchStatus();
    fetchLogs();
    setInterval(fetchStatus, 5000);
    setInterval(fetchLogs, 5000);
  </script>
</body>
</html>`))
	})

	router.GET("/monitor/status", func(c *gin.Context) {
		dbOK := false
		if config.DB != nil {
			if sqlDB, err := config.DB.DB(); err == nil {
				dbOK = sqlDB.Ping() == nil
			}
		}
		c.JSON(200, gin.H{
			"uptime":      time.Since(startedAt).Round(time.Second).String(),
			"database_ok": dbOK,
		})
	})
}

// RegisterLogsRoute exposes the log file behind a shared token.
func RegisterLogsRoute(router *gin.Engine) {
	router.GET("/logs", func(c *gin.Context) {
		token := os.Getenv("MONITOR_TOKEN")
		if token == "" || c.Query("token") != token {
			c.JSON(401, gin.H{"error": "Unauthorized"})
			return
		}
		logData, err := os.ReadFile("logs/consortium-api.log")
		if err != nil {
			c.JSON(500, gin.H{"error": "Unable to read log"})
			return
		}
		c.Data(200, "text/plain; charset=utf-8", logData)
	})
}
