package web

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/code-payments/solana-http-server/pkg/apierror"
	"github.com/code-payments/solana-http-server/pkg/balance"
	"github.com/code-payments/solana-http-server/pkg/codec"
	"github.com/code-payments/solana-http-server/pkg/instruction"
	"github.com/code-payments/solana-http-server/pkg/keypair"
	"github.com/code-payments/solana-http-server/pkg/metrics"
	"github.com/code-payments/solana-http-server/pkg/pointer"
)

const (
	keypairPath       = "/keypair"
	createTokenPath   = "/token/create"
	mintTokenPath     = "/token/mint"
	signMessagePath   = "/message/sign"
	verifyMessagePath = "/message/verify"
	sendSolPath       = "/send/sol"
	sendTokenPath     = "/send/token"
	balancePath       = "/balance"
	healthPath        = "/health"

	apiErrorEventName = "ApiError"
)

type Server struct {
	log       *logrus.Entry
	generator *keypair.Generator
	builder   *instruction.Builder
	balances  *balance.Service
}

func NewServer(generator *keypair.Generator, builder *instruction.Builder, balances *balance.Service) *Server {
	return &Server{
		log:       logrus.StandardLogger().WithField("type", "web/server"),
		generator: generator,
		builder:   builder,
		balances:  balances,
	}
}

type handlerFunc func(ctx context.Context, log *logrus.Entry, r *http.Request) (any, error)

// handle runs fn and writes its result in the response envelope.
func (s *Server) handle(path string, fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := s.log.WithContext(ctx).WithFields(logrus.Fields{
			"path":       path,
			"request_id": RequestIdFromContext(ctx),
		})

		statusCode, body := func() (int, GenericApiResponseBody) {
			data, err := fn(ctx, log, r)
			if err != nil {
				statusCode, body := HandleApiErrorInWebContext(err)

				kind := apierror.KindOf(err)
				entry := log.WithError(err).WithField("kind", kind.String())
				if statusCode >= http.StatusInternalServerError {
					entry.Warn("request failed")
				} else {
					entry.Debug("request rejected")
				}

				metrics.RecordEvent(ctx, apiErrorEventName, map[string]interface{}{
					"path":   path,
					"kind":   kind.String(),
					"status": statusCode,
				})
				return statusCode, body
			}

			return http.StatusOK, NewGenericApiSuccessResponseBody(data)
		}()

		if err := writeResponse(w, statusCode, body); err != nil {
			log.WithError(err).Warn("failed to write body")
		}
	}
}

func (s *Server) generateKeypairHandler(path string) http.HandlerFunc {
	return s.handle(path, func(ctx context.Context, log *logrus.Entry, r *http.Request) (any, error) {
		var req generateKeypairRequest
		if err := decodeRequestBody(r, &req); err != nil {
			return nil, err
		}

		kp, err := s.generator.Generate()
		if err != nil {
			return nil, err
		}

		return &keypairResponse{
			Pubkey: kp.PublicKeyBase58(),
			Secret: kp.SecretBase58(),
		}, nil
	})
}

func (s *Server) createTokenHandler(path string) http.HandlerFunc {
	return s.handle(path, func(ctx context.Context, log *logrus.Entry, r *http.Request) (any, error) {
		var req createTokenRequest
		if err := decodeRequestBody(r, &req); err != nil {
			return nil, err
		}

		desc, err := s.builder.CreateMint(ctx, *req.MintAuthority, *req.Mint, *req.Decimals)
		if err != nil {
			return nil, err
		}
		return newInstructionResponse(desc, req.Expand), nil
	})
}

func (s *Server) mintTokenHandler(path string) http.HandlerFunc {
	return s.handle(path, func(ctx context.Context, log *logrus.Entry, r *http.Request) (any, error) {
		var req mintTokenRequest
		if err := decodeRequestBody(r, &req); err != nil {
			return nil, err
		}

		desc, err := s.builder.MintTo(ctx, *req.Mint, *req.Destination, *req.Authority, *req.Amount)
		if err != nil {
			return nil, err
		}
		return newInstructionResponse(desc, req.Expand), nil
	})
}

func (s *Server) signMessageHandler(path string) http.HandlerFunc {
	return s.handle(path, func(ctx context.Context, log *logrus.Entry, r *http.Request) (any, error) {
		var req signMessageRequest
		if err := decodeRequestBody(r, &req); err != nil {
			return nil, err
		}

		kp, err := codec.DecodePrivateKey("secret", *req.Secret)
		if err != nil {
			return nil, err
		}

		signature := kp.Sign([]byte(*req.Message))
		return &signMessageResponse{
			Signature: codec.EncodeSignature(signature),
			PublicKey: kp.PublicKeyBase58(),
			Message:   *req.Message,
		}, nil
	})
}

func (s *Server) verifyMessageHandler(path string) http.HandlerFunc {
	return s.handle(path, func(ctx context.Context, log *logrus.Entry, r *http.Request) (any, error) {
		var req verifyMessageRequest
		if err := decodeRequestBody(r, &req); err != nil {
			return nil, err
		}

		pubkey, err := codec.DecodeAddress("pubkey", *req.Pubkey)
		if err != nil {
			return nil, err
		}
		signature, err := codec.DecodeSignature("signature", *req.Signature)
		if err != nil {
			return nil, err
		}

		return &verifyMessageResponse{
			Valid:   keypair.Verify([]byte(*req.Message), signature, pubkey),
			Message: *req.Message,
			Pubkey:  *req.Pubkey,
		}, nil
	})
}

func (s *Server) sendSolHandler(path string) http.HandlerFunc {
	return s.handle(path, func(ctx context.Context, log *logrus.Entry, r *http.Request) (any, error) {
		var req sendSolRequest
		if err := decodeRequestBody(r, &req); err != nil {
			return nil, err
		}

		desc, err := s.builder.TransferNative(ctx, *req.From, *req.To, *req.Lamports)
		if err != nil {
			return nil, err
		}
		return newInstructionResponse(desc, req.Expand), nil
	})
}

func (s *Server) sendTokenHandler(path string) http.HandlerFunc {
	return s.handle(path, func(ctx context.Context, log *logrus.Entry, r *http.Request) (any, error) {
		var req sendTokenRequest
		if err := decodeRequestBody(r, &req); err != nil {
			return nil, err
		}

		desc, err := s.builder.TransferToken(ctx, *req.Destination, *req.Mint, *req.Owner, *req.Amount)
		if err != nil {
			return nil, err
		}
		return newInstructionResponse(desc, req.Expand), nil
	})
}

func (s *Server) balanceHandler(path string) http.HandlerFunc {
	return s.handle(path, func(ctx context.Context, log *logrus.Entry, r *http.Request) (any, error) {
		var req balanceRequest
		if err := decodeRequestBody(r, &req); err != nil {
			return nil, err
		}

		if req.TokenMint == nil {
			lamports, err := s.balances.GetNativeBalance(ctx, *req.Address)
			if err != nil {
				return nil, err
			}
			return &balanceResponse{Balance: lamports}, nil
		}

		tokenBalance, err := s.balances.GetTokenBalance(ctx, *req.Address, *req.TokenMint)
		if err != nil {
			return nil, err
		}
		return &balanceResponse{
			Balance:  tokenBalance.Amount,
			Decimals: pointer.Uint8(tokenBalance.Decimals),
			UIAmount: pointer.String(tokenBalance.UIAmount()),
		}, nil
	})
}

func (s *Server) healthHandler(path string) http.HandlerFunc {
	return s.handle(path, func(ctx context.Context, log *logrus.Entry, r *http.Request) (any, error) {
		return &healthResponse{Status: "ok"}, nil
	})
}

// GetHandlers returns the POST handlers keyed by path.
func (s *Server) GetHandlers() map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		keypairPath:       s.generateKeypairHandler(keypairPath),
		createTokenPath:   s.createTokenHandler(createTokenPath),
		mintTokenPath:     s.mintTokenHandler(mintTokenPath),
		signMessagePath:   s.signMessageHandler(signMessagePath),
		verifyMessagePath: s.verifyMessageHandler(verifyMessagePath),
		sendSolPath:       s.sendSolHandler(sendSolPath),
		sendTokenPath:     s.sendTokenHandler(sendTokenPath),
		balancePath:       s.balanceHandler(balancePath),
	}
}
