package main

import (
	"github.com/shashiranjanraj/kashvi-events/app/providers"
	"github.com/shashiranjanraj/kashvi-events/pkg/app"
)

func main() {
	a := app.New()
	providers.EventServiceProvider(a)
	a.Run()
}
