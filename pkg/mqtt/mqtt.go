// Package mqtt publishes the moderation audit feed and answers status
// requests over MQTT.
package mqtt

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	requestPrefix  = "pancy/request/"
	responsePrefix = "pancy/response/"
	// AuditPrefix is prepended to every moderation event topic.
	AuditPrefix = "pancy/mod/"
)

// MqttRequest represents an MQTT request message
type MqttRequest struct {
	CorrelationID string      `json:"correlationId"`
	Payload       interface{} `json:"payload,omitempty"`
}

// MqttResponse represents an MQTT response message
type MqttResponse struct {
	CorrelationID string      `json:"correlationId"`
	Data          interface{} `json:"data"`
	Error         string      `json:"error,omitempty"`
}

// RequestHandler is a function type for handling MQTT requests
type RequestHandler func(payload map[string]interface{}) (interface{}, error)

type route struct {
	pattern string
	handler RequestHandler
}

// Options configures the broker connection.
type Options struct {
	Host     string
	Port     string
	Username string
	Password string
	ClientID string
}

// MqttCommunicator handles MQTT communication
type MqttCommunicator struct {
	client   mqtt.Client
	clientID string

	mu     sync.RWMutex
	routes []route
}

var (
	communicator *MqttCommunicator
	once         sync.Once
)

// Init initializes the global MQTT communicator
func Init(opts Options) *MqttCommunicator {
	once.Do(func() {
		communicator = NewMqttCommunicator(opts)
	})
	return communicator
}

// Get returns the global MQTT communicator
func Get() *MqttCommunicator {
	return communicator
}

// NewMqttCommunicator creates a communicator and starts connecting in the
// background. A broker that is down is retried, never fatal.
func NewMqttCommunicator(opts Options) *MqttCommunicator {
	mc := &MqttCommunicator{clientID: opts.ClientID}

	uniqueID := fmt.Sprintf("%s_%s", opts.ClientID, uuid.New().String())

	clientOpts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%s", opts.Host, opts.Port)).
		SetClientID(uniqueID).
		SetUsername(opts.Username).
		SetPassword(opts.Password).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(c mqtt.Client) {
			logger.Success(fmt.Sprintf("Conectado al broker MQTT como %s", opts.ClientID), "MQTT")
			mc.subscribeRequests(c)
		}).
		SetConnectionLostHandler(func(c mqtt.Client, err error) {
			logger.Error(fmt.Sprintf("Conexión MQTT perdida: %v", err), "MQTT")
		})

	mc.client = mqtt.NewClient(clientOpts)
	mc.client.Connect()

	return mc
}

// subscribeRequests runs on every (re)connect so request routing survives
// broker restarts.
func (mc *MqttCommunicator) subscribeRequests(c mqtt.Client) {
	token := c.Subscribe(requestPrefix+"#", 1, func(c mqtt.Client, msg mqtt.Message) {
		responseTopic, response, ok := mc.dispatch(msg.Topic(), msg.Payload())
		if !ok {
			return
		}
		if err := mc.Publish(responseTopic, response); err != nil {
			logger.Error(fmt.Sprintf("Error respondiendo a %s: %v", msg.Topic(), err), "MQTT")
		}
	})
	if token.Wait() && token.Error() != nil {
		logger.Error(fmt.Sprintf("Error subscribing to requests: %v", token.Error()), "MQTT")
	}
}

// Destroy closes the MQTT connection
func (mc *MqttCommunicator) Destroy() {
	if mc.client != nil && mc.client.IsConnected() {
		mc.client.Disconnect(250)
		logger.System("Conexión MQTT cerrada exitosamente.", "MQTT")
	} else {
		logger.Warn("El cliente MQTT no estaba conectado, no se necesita cerrar.", "MQTT")
	}
}

// IsConnected returns true if connected to the broker
func (mc *MqttCommunicator) IsConnected() bool {
	return mc.client != nil && mc.client.IsConnected()
}

// Publish sends a JSON message to a topic
func (mc *MqttCommunicator) Publish(topic string, payload interface{}) error {
	if !mc.IsConnected() {
		return fmt.Errorf("mqtt: not connected")
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	token := mc.client.Publish(topic, 1, false, jsonData)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("mqtt: publish to %s timed out", topic)
	}
	return token.Error()
}

// PublishEvent publishes a moderation event under AuditPrefix.
func (mc *MqttCommunicator) PublishEvent(event string, payload interface{}) error {
	return mc.Publish(AuditPrefix+event, payload)
}

// On registers a handler for request topics matching pattern (relative to
// pancy/request/, '+' and '#' wildcards allowed).
func (mc *MqttCommunicator) On(pattern string, callback RequestHandler) {
	mc.mu.Lock()
	mc.routes = append(mc.routes, route{pattern: pattern, handler: callback})
	mc.mu.Unlock()
	logger.Debug("Handler MQTT registrado: "+requestPrefix+pattern, "MQTT")
}

// dispatch decodes a request, runs the first matching handler and builds
// the response. ok is false when the message should be ignored.
func (mc *MqttCommunicator) dispatch(topic string, raw []byte) (string, MqttResponse, bool) {
	actualTopic := strings.TrimPrefix(topic, requestPrefix)

	mc.mu.RLock()
	var handler RequestHandler
	for _, r := range mc.routes {
		if topicMatch(r.pattern, actualTopic) {
			handler = r.handler
			break
		}
	}
	mc.mu.RUnlock()

	if handler == nil {
		return "", MqttResponse{}, false
	}

	var request MqttRequest
	if err := json.Unmarshal(raw, &request); err != nil {
		logger.Error(fmt.Sprintf("Error parsing MQTT request: %v", err), "MQTT")
		return "", MqttResponse{}, false
	}

	payloadMap := make(map[string]interface{})
	if pm, ok := request.Payload.(map[string]interface{}); ok {
		payloadMap = pm
	}
	payloadMap["_topic"] = actualTopic

	response := MqttResponse{CorrelationID: request.CorrelationID}
	data, err := handler(payloadMap)
	if err != nil {
		response.Error = err.Error()
	} else {
		response.Data = data
	}

	return fmt.Sprintf("%s%s/%s", responsePrefix, actualTopic, request.CorrelationID), response, true
}

// topicMatch checks if a received topic matches a pattern (with wildcards)
// '+' matches exactly one topic level
// '#' matches zero or more topic levels and must be the last character
func topicMatch(pattern, topic string) bool {
	patternParts := strings.Split(pattern, "/")
	topicParts := strings.Split(topic, "/")

	patternLen := len(patternParts)
	topicLen := len(topicParts)

	for i := 0; i < patternLen; i++ {
		if patternParts[i] == "#" {
			return true
		}

		if i >= topicLen {
			return false
		}

		if patternParts[i] == "+" {
			continue
		}

		if patternParts[i] != topicParts[i] {
			return false
		}
	}

	return patternLen == topicLen
}
