package client

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"

	"listq/broker"
	"listq/config"
	"listq/types"
)

// Client publishes commands on behalf of one client id.
type Client struct {
	id      string
	broker  broker.Broker
	queue   string
	replyTo string
}

// NewClient returns a Client publishing to queue. Commands ask for replies on
// replyTo unless it is empty.
func NewClient(id, queue, replyTo string, b broker.Broker) *Client {
	return &Client{
		id:      id,
		broker:  b,
		queue:   queue,
		replyTo: replyTo,
	}
}

// SendMessage stamps cmd with the client id and a fresh UUID when it has none,
// then publishes it.
func (c *Client) SendMessage(ctx context.Context, cmd *types.Command) error {
	cmd.Client = c.id
	cmd.EnsureID()

	req, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	return c.broker.Publish(ctx, c.queue, broker.Message{
		Body:          req,
		CorrelationID: cmd.ID,
		ReplyTo:       c.replyTo,
	})
}

func (c *Client) PushBack(ctx context.Context, list string, values ...string) error {
	return c.SendMessage(ctx, &types.Command{Action: types.PushBack, List: list, Values: values})
}

func (c *Client) PushFront(ctx context.Context, list string, values ...string) error {
	return c.SendMessage(ctx, &types.Command{Action: types.PushFront, List: list, Values: values})
}

func (c *Client) PopFront(ctx context.Context, list string) error {
	return c.SendMessage(ctx, &types.Command{Action: types.PopFront, List: list})
}

func (c *Client) PopBack(ctx context.Context, list string) error {
	return c.SendMessage(ctx, &types.Command{Action: types.PopBack, List: list})
}

func (c *Client) Remove(ctx context.Context, list, value string) error {
	return c.SendMessage(ctx, &types.Command{Action: types.Remove, List: list, Value: value})
}

func (c *Client) Show(ctx context.Context, list string) error {
	return c.SendMessage(ctx, &types.Command{Action: types.Show, List: list})
}

func (c *Client) Close() error {
	return c.broker.Close()
}

// Dialer opens a broker connection for a new client.
type Dialer func() (broker.Broker, error)

type ClientsManager struct {
	clients   map[string]*ClientUsage
	input     *os.File
	clientCfg *config.Config
	dial      Dialer
	replies   Dialer
	onReply   func(types.Reply)
	idle      time.Duration
	logger    log15.Logger
	mux       sync.Mutex
	ctx       context.Context
	Cancel    context.CancelFunc
}

type ClientUsage struct {
	client   *Client
	lastUsed time.Time
}

// NewClientsManager reads client actions from cfg.ClientsInputPath or stdin.
// When replies is not nil, commands ask for replies and the manager logs them
// from a connection opened with replies; otherwise commands ask for none.
func NewClientsManager(cfg *config.Config, dial, replies Dialer) (manager *ClientsManager, err error) {
	input := os.Stdin
	if len(cfg.ClientsInputPath) != 0 {
		input, err = os.Open(cfg.ClientsInputPath)
		if err != nil {
			return nil, errors.Wrap(err, "open clients input")
		}
	}
	logger := log15.New("service", "clients")
	logger.SetHandler(log15.LvlFilterHandler(cfg.Level(), log15.StdoutHandler))

	ctx, cancel := context.WithCancel(context.Background())
	cm := &ClientsManager{
		clients:   make(map[string]*ClientUsage),
		input:     input,
		clientCfg: cfg,
		dial:      dial,
		replies:   replies,
		idle:      time.Duration(cfg.ClientIdleSeconds) * time.Second,
		logger:    logger,
		ctx:       ctx,
		Cancel:    cancel,
	}
	cm.onReply = cm.logReply
	return cm, nil
}

// ListenClientActions reads `<clientId> <command json>` lines until the
// input ends (files only), Cancel is called, or reading fails.
func (cm *ClientsManager) ListenClientActions() error {
	defer cm.closeAll()
	defer cm.Cancel()

	if cm.replies != nil {
		b, err := cm.replies()
		if err != nil {
			return err
		}
		defer b.Close()
		if err := cm.readReplies(b); err != nil {
			return err
		}
	}

	follow := cm.input == os.Stdin
	if follow {
		cm.logger.Info("Write clients tasks here in format <clientId> <command>")
	}

	ticker := time.NewTicker(cm.idle)
	defer ticker.Stop()
	go func() {
		for {
			select {
			case <-cm.ctx.Done():
				return
			case <-ticker.C:
				cm.removeUnusedClients(time.Now())
			}
		}
	}()

	lines, errChan := SubscribeToInput(cm.ctx, cm.input, follow)

	for {
		select {
		case <-cm.ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errChan:
					return err
				default:
					return nil
				}
			}
			if err := cm.processClientAction(line); err != nil {
				cm.logger.Error("Cannot process client action", "line", line, "error", err)
			}
		}
	}
}

func (cm *ClientsManager) removeUnusedClients(now time.Time) {
	cm.mux.Lock()
	defer cm.mux.Unlock()
	for clientId, clientUsage := range cm.clients {
		if now.Sub(clientUsage.lastUsed) > cm.idle {
			clientUsage.client.Close()
			delete(cm.clients, clientId)
			cm.logger.Debug("Client evicted", "client", clientId)
		}
	}
}

func (cm *ClientsManager) closeAll() {
	cm.mux.Lock()
	defer cm.mux.Unlock()
	for clientId, clientUsage := range cm.clients {
		clientUsage.client.Close()
		delete(cm.clients, clientId)
	}
}

func (cm *ClientsManager) processClientAction(inputStr string) error {
	clientId, cmd, err := ParseClientAction(inputStr)
	if err != nil {
		return err
	}

	cm.mux.Lock()
	usage, ok := cm.clients[clientId]
	if !ok {
		b, err := cm.dial()
		if err != nil {
			cm.mux.Unlock()
			return err
		}
		usage = &ClientUsage{client: NewClient(clientId, cm.clientCfg.CommandQueue(), cm.replyTo(), b)}
		cm.clients[clientId] = usage
	}
	usage.lastUsed = time.Now()
	cm.mux.Unlock()

	return usage.client.SendMessage(cm.ctx, cmd)
}

func (cm *ClientsManager) replyTo() string {
	if cm.replies == nil {
		return ""
	}
	return cm.clientCfg.ReplyAddress()
}

// readReplies hands every reply consumed from b to onReply until the
// manager is cancelled.
func (cm *ClientsManager) readReplies(b broker.Broker) error {
	deliveries, err := b.Consume(cm.ctx)
	if err != nil {
		return err
	}
	go func() {
		for d := range deliveries {
			var reply types.Reply
			if err := json.Unmarshal(d.Body, &reply); err != nil {
				cm.logger.Error("Cannot unmarshal reply", "error", err)
			} else {
				cm.onReply(reply)
			}
			if err := d.Ack(); err != nil {
				cm.logger.Error("Error while acking reply", "error", err)
			}
		}
	}()
	return nil
}

func (cm *ClientsManager) logReply(reply types.Reply) {
	if reply.Error != "" {
		cm.logger.Warn("Command failed", "id", reply.ID, "list", reply.List, "action", reply.Action, "error", reply.Error)
		return
	}
	cm.logger.Info("Command done", "id", reply.ID, "list", reply.List, "action", reply.Action, "result", reply.Result, "size", reply.Size)
}

// ParseClientAction splits a `<clientId> <command json>` line.
func ParseClientAction(inputStr string) (string, *types.Command, error) {
	clientId, itemStr, found := strings.Cut(strings.TrimSpace(inputStr), " ")
	if !found || clientId == "" {
		return "", nil, errors.New("wrong input string, should be in format <clientId> <command>")
	}

	var cmd types.Command
	if err := json.Unmarshal([]byte(itemStr), &cmd); err != nil {
		return "", nil, errors.Wrap(err, "decode command")
	}
	return clientId, &cmd, nil
}
