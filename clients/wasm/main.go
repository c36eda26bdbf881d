//go:build js && wasm

// ogcard WASM - Client-side card renderer.
// Compiled with: GOOS=js GOARCH=wasm go build -o ogcard.wasm ./clients/wasm/
package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"syscall/js"

	"github.com/xob0t/ogcard/pkg/card"
	"github.com/xob0t/ogcard/pkg/fetch"
	"github.com/xob0t/ogcard/pkg/logger"
)

// Backgrounds are registered from JS and referenced as "asset:<id>";
// blocking network fetches are not possible inside a js.FuncOf callback.
var assets = fetch.NewMemory()

var renderer = card.NewRenderer(card.Options{Fetcher: assets, Logger: logger.Must(false)})

func main() {
	fmt.Println("ogcard WASM loaded")

	js.Global().Set("goRenderCard", js.FuncOf(renderCard))
	js.Global().Set("goRegisterAsset", js.FuncOf(registerAsset))
	js.Global().Set("goRemoveAsset", js.FuncOf(removeAsset))
	js.Global().Set("goReady", js.ValueOf(true))

	// Block forever (WASM must not exit).
	select {}
}

// goRegisterAsset(id, base64Data) - store a background image in Go memory.
func registerAsset(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("error: need id, base64Data")
	}
	data, err := base64.StdEncoding.DecodeString(args[1].String())
	if err != nil {
		return js.ValueOf("error: invalid base64: " + err.Error())
	}
	assets.Add(args[0].String(), data)
	return js.ValueOf("ok")
}

// goRemoveAsset(id) - remove a background image from Go memory.
func removeAsset(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf("error: need id")
	}
	assets.Remove(args[0].String())
	return js.ValueOf("ok")
}

// goRenderCard(requestJSON) - render and return base64 PNG.
func renderCard(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf("error: need requestJSON")
	}

	req, err := card.ParseRequest([]byte(args[0].String()))
	if err != nil {
		return js.ValueOf("error: " + err.Error())
	}

	data, err := renderer.Generate(context.Background(), req)
	if err != nil {
		return js.ValueOf("error: render: " + err.Error())
	}
	return js.ValueOf(base64.StdEncoding.EncodeToString(data))
}
