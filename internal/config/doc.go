// Package config loads reactor.json or reactor.yaml.
//
// The file sits at the project root. Every field is optional; missing
// fields take the values from New.
//
// # Configuration File Structure
//
//	{
//	  "scheduler": {
//	    "maxUpdateCount": 100
//	  },
//	  "dev": {
//	    "warnings": true
//	  },
//	  "log": {
//	    "level": "debug",
//	    "format": "json"
//	  },
//	  "server": {
//	    "addr": "localhost:3000",
//	    "writeTimeout": "10s",
//	    "heartbeatInterval": "20s"
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "myapp"
//	  },
//	  "tracing": {
//	    "enabled": false
//	  },
//	  "publish": {
//	    "region": "eu-west-1",
//	    "endpoint": "http://localhost:9000",
//	    "pathStyle": true
//	  }
//	}
//
// The same structure works as YAML in reactor.yaml.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//
// A Watcher reloads the file when it changes:
//
//	w := config.NewWatcher(cfg.Path(), 0)
//	w.OnChange(apply)
//	go w.Start(ctx)
package config
