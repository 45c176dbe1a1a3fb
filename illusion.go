//go:build js && wasm

package main

import (
	"fmt"
	"net/url"
	"strings"
	"syscall/js"

	"github.com/esimov/illusion/config"
	"github.com/esimov/illusion/wasm"
)

func main() {
	cfg := config.Default()
	search := strings.TrimPrefix(js.Global().Get("location").Get("search").String(), "?")
	if query, err := url.ParseQuery(search); err == nil {
		if mode := query.Get("mode"); mode != "" {
			cfg.Mode = mode
		}
	}

	c := wasm.NewCanvas(cfg)
	webcam, err := c.StartWebcam()
	if err != nil {
		c.Alert("Webcam not detected!")
	} else {
		err := webcam.Render()
		if err != nil {
			c.Log(fmt.Sprint(err))
		}
	}
}
