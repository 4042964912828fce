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

// Package mqtt publishes attendance events to an MQTT broker.
package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/ZaparooProject/go-mfrc522"
	"github.com/ZaparooProject/go-mfrc522/attendance"
)

// ErrPublishTimeout is returned when the broker does not acknowledge in time.
var ErrPublishTimeout = errors.New("mqtt publish not acknowledged")

// Config holds MQTT connection settings.
type Config struct {
	Host        string `yaml:"host"`
	CACert      string `yaml:"ca_cert"`
	ClientCert  string `yaml:"client_cert"`
	ClientKey   string `yaml:"client_key"`
	TopicPrefix string `yaml:"topic_prefix"`
	Port        int    `yaml:"port"`
	QoS         byte   `yaml:"qos"`
}

// Publisher implements attendance.Gateway on top of paho. It is a disabled
// no-op when no host is configured.
type Publisher struct {
	client   paho.Client
	logger   mfrc522.Logger
	topic    string
	deviceID string
	qos      byte
	enabled  bool
}

// New creates a publisher for deviceID. Returns a disabled publisher if host is empty.
func New(cfg Config, deviceID string, logger mfrc522.Logger) (*Publisher, error) {
	if logger == nil {
		logger = mfrc522.DefaultLogger
	}
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = "attendance"
	}
	if cfg.QoS > 2 {
		return nil, fmt.Errorf("mqtt qos %d out of range", cfg.QoS)
	}

	p := &Publisher{
		logger:   logger,
		deviceID: deviceID,
		topic:    EventTopic(cfg.TopicPrefix, deviceID),
		qos:      cfg.QoS,
	}

	if cfg.Host == "" {
		logger.Infof("MQTT disabled (no host configured)")
		return p, nil
	}

	var broker string
	var tlsConfig *tls.Config
	if cfg.CACert != "" || cfg.ClientCert != "" {
		if cfg.Port == 0 {
			cfg.Port = 8883
		}
		broker = fmt.Sprintf("ssl://%s:%d", cfg.Host, cfg.Port)

		var err error
		tlsConfig, err = buildTLSConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("build TLS config: %w", err)
		}
	} else {
		if cfg.Port == 0 {
			cfg.Port = 1883
		}
		broker = fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port)
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("attendanced-" + deviceID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetKeepAlive(60 * time.Second).
		SetConnectionLostHandler(p.handleConnectionLost).
		SetOnConnectHandler(p.handleConnect)
	if tlsConfig != nil {
		opts.SetTLSConfig(tlsConfig)
	}

	p.client = paho.NewClient(opts)
	p.enabled = true
	return p, nil
}

// NewWithClient wraps an existing paho client.
func NewWithClient(client paho.Client, prefix, deviceID string, qos byte, logger mfrc522.Logger) *Publisher {
	if logger == nil {
		logger = mfrc522.DefaultLogger
	}
	return &Publisher{
		client:   client,
		logger:   logger,
		deviceID: deviceID,
		topic:    EventTopic(prefix, deviceID),
		qos:      qos,
		enabled:  client != nil,
	}
}

// EventTopic returns <prefix>/<deviceID>/events.
func EventTopic(prefix, deviceID string) string {
	return prefix + "/" + deviceID + "/events"
}

func buildTLSConfig(cfg Config) (*tls.Config, error) {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}

	if cfg.CACert != "" {
		caCert, err := os.ReadFile(cfg.CACert)
		if err != nil {
			return nil, fmt.Errorf("read CA cert: %w", err)
		}
		caPool := x509.NewCertPool()
		if !caPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("no certificates in %s", cfg.CACert)
		}
		tlsConfig.RootCAs = caPool
	}

	if cfg.ClientCert != "" && cfg.ClientKey != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCert, cfg.ClientKey)
		if err != nil {
			return nil, fmt.Errorf("load client cert: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}

// Connect connects to the broker. No-op if disabled.
func (p *Publisher) Connect(ctx context.Context) error {
	if !p.enabled {
		return nil
	}
	if err := wait(ctx, p.client.Connect()); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	return nil
}

// Disconnect disconnects from the broker. No-op if disabled.
func (p *Publisher) Disconnect() {
	if !p.enabled || p.client == nil {
		return
	}
	p.client.Disconnect(250)
}

// IsEnabled returns whether a broker is configured.
func (p *Publisher) IsEnabled() bool {
	return p.enabled
}

// Topic returns the topic events are published to.
func (p *Publisher) Topic() string {
	return p.topic
}

// Send implements attendance.Gateway. It blocks until the broker
// acknowledges the message or ctx ends. No-op if disabled.
func (p *Publisher) Send(ctx context.Context, event attendance.Event) error {
	if !p.enabled {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := wait(ctx, p.client.Publish(p.topic, p.qos, false, payload)); err != nil {
		return fmt.Errorf("publish %s: %w", p.topic, err)
	}
	return nil
}

func wait(ctx context.Context, token paho.Token) error {
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrPublishTimeout, ctx.Err())
	}
}

func (p *Publisher) handleConnect(paho.Client) {
	p.logger.Infof("MQTT connection established")
}

func (p *Publisher) handleConnectionLost(_ paho.Client, err error) {
	p.logger.Warnf("MQTT connection lost: %v", err)
}

var _ attendance.Gateway = (*Publisher)(nil)
