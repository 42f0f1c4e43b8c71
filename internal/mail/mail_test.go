package mail

import (
	"context"
	"net"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/diewo77/brushwork/internal/config"
	"github.com/diewo77/brushwork/internal/report"
)

func TestNewPicksImplementation(t *testing.T) {
	_, ok := New(config.SMTPConfig{}, zap.NewNop()).(*LogMailer)
	assert.True(t, ok)
	_, ok = New(config.SMTPConfig{Host: "smtp.example.com"}, zap.NewNop()).(*SMTP)
	assert.True(t, ok)
}

func TestSMTPSend(t *testing.T) {
	s := NewSMTP(config.SMTPConfig{Host: "smtp.example.com", Port: 2525, From: "paie@example.com", RatePerMinute: 600})
	var gotAddr string
	var gotTo []string
	var gotMsg []byte
	s.send = func(_ context.Context, addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, msg
		return nil
	}

	err := s.Send(context.Background(), []string{" a@example.com ", ""}, report.Message{Subject: "Rapport de paie - semaine 33", Body: "<p>ok</p>"})
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com:2525", gotAddr)
	assert.Equal(t, []string{"a@example.com"}, gotTo)
	raw := string(gotMsg)
	assert.Contains(t, raw, "From: paie@example.com\r\n")
	assert.Contains(t, raw, "Content-Type: text/html")
	assert.True(t, strings.HasSuffix(raw, "<p>ok</p>"))
}

func TestSMTPSendNoRecipients(t *testing.T) {
	s := NewSMTP(config.SMTPConfig{Host: "smtp.example.com"})
	err := s.Send(context.Background(), []string{" "}, report.Message{})
	assert.ErrorIs(t, err, ErrNoRecipients)
}

func TestSMTPSendHonoursContext(t *testing.T) {
	s := NewSMTP(config.SMTPConfig{Host: "smtp.example.com", RatePerMinute: 1})
	s.send = func(context.Context, string, smtp.Auth, string, []string, []byte) error { return nil }
	require.NoError(t, s.Send(context.Background(), []string{"a@example.com"}, report.Message{}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := s.Send(ctx, []string{"a@example.com"}, report.Message{})
	assert.Error(t, err, "second send must wait for the bucket and give up with the context")
}

func TestSMTPDeliverStalledRelay(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	accepted := make(chan net.Conn, 1)
	go func() {
		// accept and never answer
		c, err := ln.Accept()
		if err == nil {
			accepted <- c
		}
	}()
	defer func() {
		select {
		case c := <-accepted:
			c.Close()
		default:
		}
	}()

	host, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	p, err := net.LookupPort("tcp", port)
	require.NoError(t, err)
	s := NewSMTP(config.SMTPConfig{Host: host, Port: p, From: "paie@example.com", RatePerMinute: 600})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	start := time.Now()
	err = s.Send(ctx, []string{"a@example.com"}, report.Message{Subject: "s", Body: "b"})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestSMTPDeliverCancelled(t *testing.T) {
	s := NewSMTP(config.SMTPConfig{Host: "127.0.0.1", Port: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.deliver(ctx, s.addr, nil, "a@example.com", []string{"b@example.com"}, []byte("x"))
	assert.Error(t, err)
}

func TestLogMailer(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := &LogMailer{Log: zap.New(core)}
	require.NoError(t, m.Send(context.Background(), []string{"a@example.com"}, report.Message{Subject: "s", Body: "b"}))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "s", logs.All()[0].ContextMap()["subject"])
}
