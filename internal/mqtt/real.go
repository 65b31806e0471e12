package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/button-panel/internal/logic"
)

const (
	clientID       = "button-panel"
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
	queueSize      = 64
	bufferSize     = 256
)

// RealPublisher publishes to an actual MQTT broker.
//
// Publish and PublishSystem only queue; a worker goroutine owns the network
// round trip so the control loop never waits on the broker. While
// disconnected, or while earlier messages are still waiting, messages are
// held in a backlog and fed back to the worker in order.
type RealPublisher struct {
	client paho.Client

	mu            sync.Mutex
	connected     bool
	everConnected bool
	closed        bool
	buffer        *backlog[outMsg]
	overflowing   bool // set once the backlog first drops during an outage

	queue chan outMsg
	done  chan struct{}
}

// NewRealPublisher creates a publisher for the given broker. If the broker is
// not reachable within the connect timeout the publisher is still returned
// and keeps retrying in the background.
func NewRealPublisher(broker string) (*RealPublisher, error) {
	p := &RealPublisher{
		buffer: newBacklog[outMsg](bufferSize),
		queue:  make(chan outMsg, queueSize),
		done:   make(chan struct{}),
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(TopicSystem, string(willPayload()), 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(p.onConnectionLost)

	p.client = paho.NewClient(opts)
	go p.worker()

	token := p.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		log.Printf("mqtt: broker %s not reachable yet, buffering", broker)
		return p, nil
	}
	if err := token.Error(); err != nil {
		p.Close()
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	return p, nil
}

// Publish queues a panel event. QoS 0 (at-most-once), not retained.
func (p *RealPublisher) Publish(event logic.Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	return p.enqueue(outMsg{topic: Topic, payload: payload})
}

// PublishSystem queues a system lifecycle event at QoS 1.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return p.enqueue(outMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
}

func (p *RealPublisher) enqueue(msg outMsg) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return fmt.Errorf("publisher closed")
	}
	// Anything already waiting goes first.
	if !p.connected || p.buffer.len() > 0 {
		p.hold(msg)
		p.refill()
		return nil
	}
	select {
	case p.queue <- msg:
	default:
		p.hold(msg)
	}
	return nil
}

// refill moves backlog entries, oldest first, into free queue slots while
// the broker is reachable. Callers hold p.mu, which also makes the sends
// non-blocking: every other sender holds it too.
func (p *RealPublisher) refill() {
	for p.connected && !p.closed && len(p.queue) < cap(p.queue) {
		msg, ok := p.buffer.pop()
		if !ok {
			p.overflowing = false
			return
		}
		p.queue <- msg
	}
}

func (p *RealPublisher) worker() {
	defer close(p.done)
	for msg := range p.queue {
		token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
		if !token.WaitTimeout(publishTimeout) {
			log.Printf("mqtt: publish timeout on %s", msg.topic)
			p.requeue(msg)
			continue
		}
		if err := token.Error(); err != nil {
			log.Printf("mqtt: publish error: %v", err)
			p.requeue(msg)
			continue
		}
		p.mu.Lock()
		p.refill()
		p.mu.Unlock()
	}
}

// hold parks msg in the backlog. Callers hold p.mu.
func (p *RealPublisher) hold(msg outMsg) {
	if p.buffer.push(msg) && !p.overflowing {
		p.overflowing = true
		log.Printf("mqtt: backlog full (%d messages), dropping oldest", len(p.buffer.items))
	}
}

// requeue puts a failed message back in the backlog. If the connection is
// still up it is retried once the queue has room.
func (p *RealPublisher) requeue(msg outMsg) {
	p.mu.Lock()
	p.hold(msg)
	p.refill()
	p.mu.Unlock()
}

func (p *RealPublisher) onConnect(paho.Client) {
	p.mu.Lock()
	defer p.mu.Unlock()
	reconnect := p.everConnected
	p.connected = true
	p.everConnected = true

	if reconnect {
		log.Printf("mqtt: reconnected, replaying %d buffered messages", p.buffer.len())
		payload, _ := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "RECONNECTED"})
		p.hold(outMsg{topic: TopicSystem, payload: payload, qos: 1})
	} else {
		log.Printf("mqtt: connected")
	}
	p.refill()
}

func (p *RealPublisher) onConnectionLost(_ paho.Client, err error) {
	p.mu.Lock()
	p.connected = false
	p.mu.Unlock()
	log.Printf("mqtt: connection lost: %v", err)
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

// Dropped reports how many messages the backlog has discarded since startup.
func (p *RealPublisher) Dropped() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buffer.dropped
}

// Close sends what is already queued and disconnects from the broker.
// Messages still in the backlog are dropped.
func (p *RealPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	dropped := len(p.buffer.drain())
	close(p.queue)
	p.mu.Unlock()

	<-p.done
	if dropped > 0 {
		log.Printf("mqtt: dropping %d buffered messages on close (%d lost earlier)", dropped, p.Dropped())
	}
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
