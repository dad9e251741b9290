//go:build !tinygo

// Command sendalert publishes a plain-text alert to the badge's topic,
// for poking a badge on the desk without waiting for the real producer.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	mqtt "github.com/soypat/natiu-mqtt"
)

func main() {
	var (
		server   = flag.String("server", "catbus.eth.moe:1883", "Broker host:port.")
		topic    = flag.String("topic", "home/house/alert/info_string", "Topic to publish on.")
		clientID = flag.String("client-id", "sendalert", "Broker client identifier.")
		timeout  = flag.Duration("timeout", 5*time.Second, "Dial and handshake timeout.")
	)
	flag.Parse()

	message := strings.Join(flag.Args(), " ")
	if message == "" {
		fatalf("usage: sendalert [flags] message ...")
	}

	conn, err := net.DialTimeout("tcp", *server, *timeout)
	if err != nil {
		fatalf("dial %s: %v", *server, err)
	}
	defer conn.Close()

	cli := mqtt.NewClient(mqtt.ClientConfig{
		Decoder: mqtt.DecoderNoAlloc{UserBuffer: make([]byte, 4096)},
		OnPub: func(_ mqtt.Header, _ mqtt.VariablesPublish, _ io.Reader) error {
			return nil
		},
	})

	var varconn mqtt.VariablesConnect
	varconn.SetDefaultMQTT([]byte(*clientID))

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	conn.SetDeadline(time.Now().Add(*timeout))
	if err := cli.Connect(ctx, conn, &varconn); err != nil {
		fatalf("connect %s: %v", *server, err)
	}

	pubFlags, _ := mqtt.NewPublishFlags(mqtt.QoS0, false, false)
	varPub := mqtt.VariablesPublish{
		TopicName:        []byte(*topic),
		PacketIdentifier: 1,
	}
	if err := cli.PublishPayload(pubFlags, varPub, []byte(message)); err != nil {
		fatalf("publish: %v", err)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
