// go-mfrc522
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-mfrc522.
//
// go-mfrc522 is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-mfrc522 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-mfrc522; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
	"github.com/ZaparooProject/go-mfrc522/attendance"
	"github.com/ZaparooProject/go-mfrc522/config"
	"github.com/ZaparooProject/go-mfrc522/display"
	"github.com/ZaparooProject/go-mfrc522/gateway"
	"github.com/ZaparooProject/go-mfrc522/gateway/httpapi"
	"github.com/ZaparooProject/go-mfrc522/gateway/mqtt"
	"github.com/ZaparooProject/go-mfrc522/outbox"
	"github.com/ZaparooProject/go-mfrc522/polling"
	"golang.org/x/sync/errgroup"
)

const mqttConnectTimeout = 10 * time.Second

// app is one running terminal: reader loop, pipeline and delivery chain.
type app struct {
	logger    mfrc522.Logger
	display   display.Display
	gateway   attendance.Gateway
	outbox    *outbox.Outbox
	publisher *mqtt.Publisher
	pipeline  *attendance.Pipeline
	loop      *polling.Loop
}

// newApp wires the pipeline behind reader. The display is owned by the caller.
func newApp(
	ctx context.Context, cfg config.Config, reader polling.Reader, disp display.Display, logger mfrc522.Logger,
) (*app, error) {
	a := &app{logger: logger, display: disp}

	var client *httpapi.Client
	if cfg.HTTP.GatewayURL != "" || cfg.HTTP.DirectoryURL != "" {
		client = httpapi.New(cfg.HTTP, &http.Client{})
	}

	if err := a.buildGateway(ctx, cfg, client); err != nil {
		a.Close()
		return nil, err
	}

	var directory attendance.Directory
	if client != nil && cfg.HTTP.DirectoryURL != "" {
		directory = client
	}

	dispatcher := attendance.NewDispatcher(cfg.DeviceID, a.gateway,
		attendance.WithDebounceWindow(cfg.Attendance.DebounceWindow))
	cache := attendance.NewCache(cfg.Attendance.CacheSize, nil)
	a.pipeline = attendance.NewPipeline(cache, dispatcher, directory, disp, logger)
	a.loop = polling.NewLoop(reader, cfg.PollingConfig(), a.pipeline.OnCard, logger)
	return a, nil
}

// buildGateway assembles HTTP and MQTT delivery. With the outbox enabled
// each backend gets its own retry queue; otherwise a Multi fans out.
func (a *app) buildGateway(ctx context.Context, cfg config.Config, client *httpapi.Client) error {
	var targets []outbox.Target
	if client != nil && cfg.HTTP.GatewayURL != "" {
		targets = append(targets, outbox.Target{Name: "http", Gateway: client})
	}

	if cfg.MQTT.Host != "" {
		publisher, err := mqtt.New(cfg.MQTT, cfg.DeviceID, a.logger)
		if err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
		connectCtx, cancel := context.WithTimeout(ctx, mqttConnectTimeout)
		err = publisher.Connect(connectCtx)
		cancel()
		if err != nil {
			// paho keeps retrying in the background; undelivered events go to the outbox.
			a.logger.Warnf("mqtt broker %s not reachable yet: %v", cfg.MQTT.Host, err)
		}
		a.publisher = publisher
		targets = append(targets, outbox.Target{Name: "mqtt", Gateway: publisher})
	}

	if len(targets) == 0 {
		a.logger.Warnf("no gateway configured, events are only logged")
	}

	if !cfg.Outbox.Enabled {
		gateways := make([]attendance.Gateway, 0, len(targets))
		for _, t := range targets {
			gateways = append(gateways, t.Gateway)
		}
		a.gateway = gateway.NewMulti(gateways...)
		return nil
	}

	ob, err := outbox.OpenTargets(cfg.Outbox, targets, a.logger)
	if err != nil {
		return err
	}
	a.outbox = ob
	a.gateway = ob
	return nil
}

// Run polls until ctx ends, flushing the outbox alongside.
func (a *app) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.loop.Run(gctx) })
	if a.outbox != nil {
		g.Go(func() error { return a.outbox.Run(gctx) })
	}

	err := g.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// Close releases delivery resources. It does not close the reader.
func (a *app) Close() {
	if a.outbox != nil {
		if err := a.outbox.Close(); err != nil {
			a.logger.Errorf("close outbox: %v", err)
		}
	}
	if a.publisher != nil {
		a.publisher.Disconnect()
	}
}
