package server

import (
	"context"
	"encoding/json"

	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"

	"listq/broker"
	"listq/config"
	"listq/types"
)

// Server consumes commands from a broker and applies them in arrival order.
type Server struct {
	processor *Processor
	broker    broker.Broker
	journal   log15.Logger
	logger    log15.Logger
	ctx       context.Context
	Cancel    context.CancelFunc
}

func NewServer(conf *config.Config, b broker.Broker) (*Server, error) {
	logger := log15.New("service", "server")
	logger.SetHandler(log15.LvlFilterHandler(conf.Level(), log15.StdoutHandler))

	journal := log15.New()
	journalHandler, err := log15.FileHandler(conf.LogFilePath, log15.LogfmtFormat())
	if err != nil {
		return nil, errors.Wrapf(err, "open journal %s", conf.LogFilePath)
	}
	journal.SetHandler(journalHandler)

	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		processor: NewProcessor(conf.MaxListSize),
		broker:    b,
		journal:   journal,
		logger:    logger,
		ctx:       ctx,
		Cancel:    cancel,
	}, nil
}

// StartServer blocks until Cancel is called or the broker stops delivering.
func (s *Server) StartServer() error {
	s.logger.Info("Listening queue!")
	deliveries, err := s.broker.Consume(s.ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-s.ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				if s.ctx.Err() != nil {
					return nil
				}
				return errors.New("broker closed the delivery stream")
			}
			s.processMessage(d)
		}
	}
}

func (s *Server) processMessage(d broker.Delivery) {
	var reply types.Reply
	var cmd types.Command
	if err := json.Unmarshal(d.Body, &cmd); err != nil {
		s.logger.Error("Cannot unmarshal message", "error", err)
		reply = types.Reply{ID: d.CorrelationID, Error: err.Error()}
	} else {
		reply = s.processor.Process(&cmd)
		s.journal.Info("processed", "id", cmd.ID, "client", cmd.Client, "list", cmd.List,
			"action", cmd.Action, "result", reply.Result, "size", reply.Size, "error", reply.Error)
		s.logger.Debug("Command processed", "id", cmd.ID, "action", cmd.Action, "list", cmd.List)
	}

	if d.ReplyTo != "" {
		if err := s.sendReply(d.ReplyTo, &reply); err != nil {
			s.logger.Error("Error while sending reply", "error", err, "reply_to", d.ReplyTo)
		}
	}
	if err := d.Ack(); err != nil {
		s.logger.Error("Error while acking message", "error", err)
	}
}

func (s *Server) sendReply(queue string, reply *types.Reply) error {
	body, err := json.Marshal(reply)
	if err != nil {
		return err
	}
	return s.broker.Publish(s.ctx, queue, broker.Message{Body: body, CorrelationID: reply.ID})
}
