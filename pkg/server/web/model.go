package web

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"

	"github.com/code-payments/solana-http-server/pkg/apierror"
	"github.com/code-payments/solana-http-server/pkg/codec"
	"github.com/code-payments/solana-http-server/pkg/instruction"
	"github.com/code-payments/solana-http-server/pkg/solana"
)

const maxRequestBodySize = 1 << 20

// Required fields are pointers so that absent fields can be told apart from
// zero values.

type generateKeypairRequest struct{}

type createTokenRequest struct {
	MintAuthority *string `json:"mint_authority"`
	Mint          *string `json:"mint"`
	Decimals      *uint8  `json:"decimals"`
	Expand        bool    `json:"expand"`
}

func (r *createTokenRequest) validate() error {
	return requireFields(
		requiredField{"mint_authority", r.MintAuthority != nil},
		requiredField{"mint", r.Mint != nil},
		requiredField{"decimals", r.Decimals != nil},
	)
}

type mintTokenRequest struct {
	Mint        *string `json:"mint"`
	Destination *string `json:"destination"`
	Authority   *string `json:"authority"`
	Amount      *uint64 `json:"amount"`
	Expand      bool    `json:"expand"`
}

func (r *mintTokenRequest) validate() error {
	return requireFields(
		requiredField{"mint", r.Mint != nil},
		requiredField{"destination", r.Destination != nil},
		requiredField{"authority", r.Authority != nil},
		requiredField{"amount", r.Amount != nil},
	)
}

type signMessageRequest struct {
	Message *string `json:"message"`
	Secret  *string `json:"secret"`
}

func (r *signMessageRequest) validate() error {
	return requireFields(
		requiredField{"message", r.Message != nil},
		requiredField{"secret", r.Secret != nil},
	)
}

type verifyMessageRequest struct {
	Message   *string `json:"message"`
	Signature *string `json:"signature"`
	Pubkey    *string `json:"pubkey"`
}

func (r *verifyMessageRequest) validate() error {
	return requireFields(
		requiredField{"message", r.Message != nil},
		requiredField{"signature", r.Signature != nil},
		requiredField{"pubkey", r.Pubkey != nil},
	)
}

type sendSolRequest struct {
	From     *string `json:"from"`
	To       *string `json:"to"`
	Lamports *uint64 `json:"lamports"`
	Expand   bool    `json:"expand"`
}

func (r *sendSolRequest) validate() error {
	return requireFields(
		requiredField{"from", r.From != nil},
		requiredField{"to", r.To != nil},
		requiredField{"lamports", r.Lamports != nil},
	)
}

type sendTokenRequest struct {
	Destination *string `json:"destination"`
	Mint        *string `json:"mint"`
	Owner       *string `json:"owner"`
	Amount      *uint64 `json:"amount"`
	Expand      bool    `json:"expand"`
}

func (r *sendTokenRequest) validate() error {
	return requireFields(
		requiredField{"destination", r.Destination != nil},
		requiredField{"mint", r.Mint != nil},
		requiredField{"owner", r.Owner != nil},
		requiredField{"amount", r.Amount != nil},
	)
}

type balanceRequest struct {
	Address   *string `json:"address"`
	TokenMint *string `json:"token_mint"`
}

func (r *balanceRequest) validate() error {
	return requireFields(
		requiredField{"address", r.Address != nil},
	)
}

type validator interface {
	validate() error
}

type requiredField struct {
	name    string
	present bool
}

func requireFields(fields ...requiredField) error {
	for _, field := range fields {
		if !field.present {
			return apierror.MissingField(field.name)
		}
	}
	return nil
}

// decodeRequestBody parses the JSON body of r into dst. Any parse failure,
// type mismatch or missing required field is a malformed body error.
func decodeRequestBody(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize+1))
	if err != nil {
		return apierror.MalformedBody(errors.Wrap(err, "error reading request body"))
	}
	if len(body) > maxRequestBodySize {
		return apierror.MalformedBody(errors.New("request body too large"))
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return apierror.MalformedBody(err)
	}

	if v, ok := dst.(validator); ok {
		return v.validate()
	}
	return nil
}

type keypairResponse struct {
	Pubkey string `json:"pubkey"`
	Secret string `json:"secret"`
}

type signMessageResponse struct {
	Signature string `json:"signature"`
	PublicKey string `json:"public_key"`
	Message   string `json:"message"`
}

type verifyMessageResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
	Pubkey  string `json:"pubkey"`
}

type balanceResponse struct {
	Balance  uint64  `json:"balance"`
	Decimals *uint8  `json:"decimals,omitempty"`
	UIAmount *string `json:"ui_amount,omitempty"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type accountMetaJson struct {
	Pubkey     string `json:"pubkey"`
	IsSigner   bool   `json:"is_signer"`
	IsWritable bool   `json:"is_writable"`
}

type instructionJson struct {
	ProgramId       string            `json:"program_id"`
	Accounts        []accountMetaJson `json:"accounts"`
	InstructionData string            `json:"instruction_data"`
}

// instructionResponse is the compressed single-payload descriptor, optionally
// followed by the individual instructions it was built from.
type instructionResponse struct {
	instructionJson
	Instructions []instructionJson `json:"instructions,omitempty"`
}

func newInstructionJson(program []byte, accounts []solana.AccountMeta, data []byte) instructionJson {
	res := instructionJson{
		ProgramId:       codec.EncodeAddress(program),
		Accounts:        make([]accountMetaJson, len(accounts)),
		InstructionData: base64.StdEncoding.EncodeToString(data),
	}
	for i, account := range accounts {
		res.Accounts[i] = accountMetaJson{
			Pubkey:     codec.EncodeAddress(account.PublicKey),
			IsSigner:   account.IsSigner,
			IsWritable: account.IsWritable,
		}
	}
	return res
}

func newInstructionResponse(desc *instruction.Descriptor, expand bool) *instructionResponse {
	res := &instructionResponse{
		instructionJson: newInstructionJson(desc.Program, desc.Accounts, desc.Data),
	}

	if expand {
		res.Instructions = make([]instructionJson, len(desc.Parts))
		for i, part := range desc.Parts {
			res.Instructions[i] = newInstructionJson(part.Program, part.Accounts, part.Data)
		}
	}
	return res
}
