package core

import (
	"context"
	"fmt"
	"testing"
)

func benchmarkBroadcast(b *testing.B, recipients int) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil, nil, Options{})
	go hub.Run(ctx)

	sender := NewClient("sender", 0)
	hub.RegisterClient(sender)

	clients := make([]*Client, 0, recipients)
	for i := range recipients {
		c := NewClient(fmt.Sprintf("c%d", i), 0)
		hub.RegisterClient(c)
		clients = append(clients, c)
	}

	// Drain events for all but the first recipient to avoid channel backpressure.
	target := clients[0]
	for _, c := range clients[1:] {
		go func(cl *Client) {
			for range cl.Events {
			}
		}(c)
	}
	go func() {
		for range sender.Events {
		}
	}()

	payload := []byte(`{"type":"send","text":"payload"}`)

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		hub.Dispatch(sender, Command{Kind: CommandSend, Frame: Frame{Data: payload}})
		for {
			if ev := <-target.Events; ev.Kind == EventRelay {
				break
			}
		}
	}
}

func BenchmarkBroadcast_10(b *testing.B)  { benchmarkBroadcast(b, 10) }
func BenchmarkBroadcast_100(b *testing.B) { benchmarkBroadcast(b, 100) }
func BenchmarkBroadcast_500(b *testing.B) { benchmarkBroadcast(b, 500) }
