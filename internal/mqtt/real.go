package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/knock-sensor/internal/logger"
	"github.com/sweeney/knock-sensor/internal/logic"
)

// BufferSize is the number of messages held while the broker is unreachable.
const BufferSize = 100

const publishTimeout = 5 * time.Second

// RealPublisher publishes to an actual MQTT broker. Messages published while
// disconnected are buffered and replayed, oldest first, on reconnect.
type RealPublisher struct {
	client paho.Client
	log    *logger.Logger

	mu        sync.Mutex
	buffer    *ringBuffer
	connected bool
	connects  int
}

// NewRealPublisher creates a publisher for the given broker. The connection
// is retried in the background, so the daemon starts even if the broker is
// down; the initial connect waits at most connectWait.
func NewRealPublisher(broker, clientID string, connectWait time.Duration, log *logger.Logger) *RealPublisher {
	p := &RealPublisher{
		log:    log,
		buffer: newRingBuffer(BufferSize),
	}

	will, _ := FormatSystemPayload(WillEvent(time.Now()))

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetBinaryWill(TopicSystem, will, 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(p.onConnectionLost)

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(connectWait) {
		log.Warn("mqtt broker not reachable yet, buffering", "broker", broker)
	} else if err := token.Error(); err != nil {
		log.Warn("mqtt connect failed, buffering", "broker", broker, "error", err)
	}

	return p
}

// Publish sends a lock event to the MQTT broker.
func (p *RealPublisher) Publish(event logic.Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 1: access outcomes should not be lost silently.
	return p.send(bufferedMsg{topic: Topic, payload: payload, qos: 1})
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	return p.send(bufferedMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
}

func (p *RealPublisher) send(msg bufferedMsg) error {
	p.mu.Lock()
	if !p.connected {
		if p.buffer.push(msg) {
			p.log.Warn("mqtt buffer full, dropping oldest", "capacity", BufferSize)
		}
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to %s: timeout", msg.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", msg.topic, err)
	}
	return nil
}

func (p *RealPublisher) onConnect(c paho.Client) {
	p.mu.Lock()
	p.connected = true
	p.connects++
	reconnect := p.connects > 1
	pending := p.buffer.drainAll()
	p.mu.Unlock()

	p.log.Info("mqtt connected", "replaying", len(pending))

	// Called from a paho goroutine; publishing must not wait on tokens here.
	for _, msg := range pending {
		c.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	}
	if reconnect {
		payload, _ := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "RECONNECTED"})
		c.Publish(TopicSystem, 1, false, payload)
	}
}

func (p *RealPublisher) onConnectionLost(_ paho.Client, err error) {
	p.mu.Lock()
	p.connected = false
	p.mu.Unlock()
	p.log.Warn("mqtt connection lost", "error", err)
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

// Buffered returns the number of messages waiting for a connection.
func (p *RealPublisher) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buffer.len()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
