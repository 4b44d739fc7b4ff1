// Package config provides configuration parsing for peerwire.
//
// The configuration is stored in peerwire.json. Every field is optional;
// missing fields keep the defaults shown here.
//
// # Configuration File Structure
//
//	{
//	  "packer": {
//	    "maxSize": 2147483647,
//	    "initialCap": 128
//	  },
//	  "log": {
//	    "level": "info",
//	    "development": false
//	  },
//	  "metrics": {
//	    "namespace": "peerwire",
//	    "subsystem": "codec"
//	  },
//	  "debug": {
//	    "address": "localhost:9650"
//	  },
//	  "transport": {
//	    "url": "ws://127.0.0.1:9651/ext/peer",
//	    "writeTimeout": "10s"
//	  },
//	  "archive": {
//	    "bucket": "my-frames",
//	    "prefix": "frames/",
//	    "region": "us-east-1"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Resolve(flagPath)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	codec := message.NewCodec(message.WithMaxSize(cfg.Packer.MaxSize))
package config
