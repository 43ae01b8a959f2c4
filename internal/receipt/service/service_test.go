package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"receiptmint/internal/ledger"
	"receiptmint/internal/receipt/mirror"
	"receiptmint/internal/receipt/models"
	"receiptmint/internal/receipt/service/mocks"
	dErrors "receiptmint/pkg/domain-errors"
)

const (
	treasury    ledger.AccountID = "0.0.500"
	customer    ledger.AccountID = "0.0.1001"
	collection  ledger.TokenID   = "0.0.7002"
	rewardToken ledger.TokenID   = "0.0.7001"
	metadataURI                  = "https://gateway.example/ipfs/QmReceipt"
)

// =============================================================================
// Receipt Service Test Suite
// =============================================================================
// The pipeline's value is its failure policy: which upstream errors are
// absorbed, which abort, and which are reported alongside a minted serial.
// These tests pin that policy with mocked collaborators.

type ServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	ledger    *mocks.MockClient
	publisher *mocks.MockMetadataPublisher
	index     *mocks.MockOwnershipIndex
	fetcher   *mocks.MockMetadataFetcher
	events    *mocks.MockEventPublisher
	loyalty   *mocks.MockLoyaltyNotifier
	service   *Service
	now       time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.ledger = mocks.NewMockClient(s.ctrl)
	s.publisher = mocks.NewMockMetadataPublisher(s.ctrl)
	s.index = mocks.NewMockOwnershipIndex(s.ctrl)
	s.fetcher = mocks.NewMockMetadataFetcher(s.ctrl)
	s.events = mocks.NewMockEventPublisher(s.ctrl)
	s.loyalty = mocks.NewMockLoyaltyNotifier(s.ctrl)
	s.now = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	s.service = s.newService()
}

func (s *ServiceSuite) TearDownTest() {
	s.service.Wait()
	s.ctrl.Finish()
}

func (s *ServiceSuite) newService(opts ...Option) *Service {
	s.ledger.EXPECT().Treasury().Return(treasury)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	base := []Option{WithLogger(logger), WithClock(func() time.Time { return s.now })}
	svc, err := New(s.ledger, s.publisher, s.index, s.fetcher, Config{
		CollectionID:  collection,
		RewardTokenID: rewardToken,
		RewardAmount:  10,
		RewardSymbol:  "RECV",
		ExplorerURL:   "https://hashscan.io/testnet/",
		ListTimeout:   time.Second,
	}, append(base, opts...)...)
	s.Require().NoError(err)
	return svc
}

func (s *ServiceSuite) request(to ledger.AccountID) models.MintRequest {
	return models.MintRequest{
		Merchant: "Cafe X",
		Items:    []models.Item{{Name: "Latte", Price: 4.5, Quantity: 1}},
		Total:    4.5,
		Customer: to,
	}
}

func (s *ServiceSuite) expectAssociate(account ledger.AccountID, err error) {
	s.ledger.EXPECT().
		AssociateTokens(gomock.Any(), account, ledger.OperatorKey, []ledger.TokenID{rewardToken, collection}).
		Return(ledger.Receipt{TransactionID: "0.0.500@1.1", Status: ledger.StatusSuccess}, err)
}

func (s *ServiceSuite) expectPublish() {
	s.publisher.EXPECT().
		Publish(gomock.Any(), gomock.Any(), "receipt-cafe-x-1714554000000.json").
		DoAndReturn(func(_ context.Context, doc any, _ string) (string, error) {
			d, ok := doc.(models.ReceiptDocument)
			s.Require().True(ok)
			s.Equal("Cafe X", d.Properties.Merchant)
			s.Equal(4.5, d.Properties.Total)
			s.Equal("2024-05-01T09:00:00Z", d.Properties.Date)
			return metadataURI, nil
		})
}

func (s *ServiceSuite) expectMint(serial int64) {
	s.ledger.EXPECT().
		MintNFT(gomock.Any(), collection, []byte(metadataURI)).
		Return(ledger.MintReceipt{
			Receipt: ledger.Receipt{TransactionID: "0.0.500@2.2", Status: ledger.StatusSuccess},
			Serials: []int64{serial},
		}, nil)
}

func alreadyAssociated() error {
	return &ledger.StatusError{Op: "associate", Status: ledger.StatusTokenAlreadyAssociated}
}

// =============================================================================
// Constructor
// =============================================================================

func (s *ServiceSuite) TestNew() {
	cfg := Config{CollectionID: collection, RewardTokenID: rewardToken, RewardAmount: 10}

	s.Run("nil ledger returns error", func() {
		_, err := New(nil, s.publisher, s.index, s.fetcher, cfg)
		s.ErrorContains(err, "ledger client is required")
	})

	s.Run("missing identifiers return error", func() {
		_, err := New(s.ledger, s.publisher, s.index, s.fetcher, Config{RewardAmount: 10})
		s.ErrorContains(err, "collection and reward token ids are required")
	})

	s.Run("non-positive reward returns error", func() {
		_, err := New(s.ledger, s.publisher, s.index, s.fetcher, Config{CollectionID: collection, RewardTokenID: rewardToken})
		s.ErrorContains(err, "reward amount must be positive")
	})
}

// =============================================================================
// Mint pipeline
// =============================================================================

func (s *ServiceSuite) TestMintReceipt_DeliversToCustomer() {
	s.expectAssociate(customer, nil)
	s.expectPublish()
	s.expectMint(12)
	s.ledger.EXPECT().Transfer(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req ledger.TransferRequest) (ledger.Receipt, error) {
			s.Equal(collection, req.Collection)
			s.Equal(int64(12), req.Serial)
			s.Equal(treasury, req.From)
			s.Equal(customer, req.To)
			s.Equal(rewardToken, req.RewardToken)
			s.Equal(int64(10), req.RewardAmount)
			s.Equal("Receipt 0.0.7002::12 from Cafe X", req.Memo)
			return ledger.Receipt{TransactionID: "0.0.500@3.3", Status: ledger.StatusSuccess}, nil
		})

	summary, err := s.service.MintReceipt(context.Background(), s.request(customer))

	s.Require().NoError(err)
	s.False(summary.TestMode)
	s.Equal("0.0.7002::12", summary.ReceiptNFT)
	s.Equal(metadataURI, summary.MetadataURL)
	s.Equal("10 RECV", summary.Reward)
	s.Equal("SUCCESS", summary.TxStatus)
	s.Equal("https://hashscan.io/testnet/token/0.0.7002/12", summary.NFTViewURL)
	s.Equal(models.StateDone, summary.Result.State)
	s.Equal([]models.State{
		models.StateStart, models.StateAssociating, models.StatePublishing,
		models.StateMinting, models.StateTransferring, models.StateDone,
	}, summary.Result.Trail)
	s.True(summary.Result.Transfer.Executed)
	s.Equal(int64(10), summary.Result.Transfer.RewardAmount)
}

func (s *ServiceSuite) TestMintReceipt_TreasuryCustomerSkipsTransfer() {
	s.expectAssociate(treasury, alreadyAssociated())
	s.expectPublish()
	s.expectMint(3)
	s.ledger.EXPECT().Transfer(gomock.Any(), gomock.Any()).Times(0)

	summary, err := s.service.MintReceipt(context.Background(), s.request(treasury))

	s.Require().NoError(err)
	s.True(summary.TestMode)
	s.Equal("0.0.7002::3", summary.ReceiptNFT)
	s.Equal("No reward (testing mode)", summary.Reward)
	s.Equal("NFT_MINTED_ONLY", summary.TxStatus)
	s.False(summary.Result.Transfer.Executed)
	s.Zero(summary.Result.Transfer.RewardAmount)
	s.NotContains(summary.Result.Trail, models.StateTransferring)
}

func (s *ServiceSuite) TestMintReceipt_AssociationProblemsDoNotBlockMint() {
	s.Run("already associated", func() {
		s.expectAssociate(customer, alreadyAssociated())
		s.expectPublish()
		s.expectMint(4)
		s.ledger.EXPECT().Transfer(gomock.Any(), gomock.Any()).Return(ledger.Receipt{Status: ledger.StatusSuccess}, nil)

		summary, err := s.service.MintReceipt(context.Background(), s.request(customer))

		s.Require().NoError(err)
		s.Equal(models.StateDone, summary.Result.State)
	})

	s.Run("other association failure", func() {
		s.expectAssociate(customer, &ledger.StatusError{Op: "associate", Status: "INSUFFICIENT_PAYER_BALANCE"})
		s.expectPublish()
		s.expectMint(5)
		s.ledger.EXPECT().Transfer(gomock.Any(), gomock.Any()).Return(ledger.Receipt{Status: ledger.StatusSuccess}, nil)

		summary, err := s.service.MintReceipt(context.Background(), s.request(customer))

		s.Require().NoError(err)
		s.Equal("0.0.7002::5", summary.ReceiptNFT)
	})
}

func (s *ServiceSuite) TestMintReceipt_PublishFailureIsFatal() {
	s.expectAssociate(customer, nil)
	upstream := models.NewStageError(models.StageStorage, "INVALID_CREDENTIALS", errors.New("status 401"))
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Return("", upstream)
	s.ledger.EXPECT().MintNFT(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	summary, err := s.service.MintReceipt(context.Background(), s.request(customer))

	s.Nil(summary)
	s.ErrorIs(err, models.ErrStorageUpload)
	s.True(dErrors.HasCode(err, dErrors.CodeUpstream))
	s.Contains(err.Error(), "INVALID_CREDENTIALS")
}

func (s *ServiceSuite) TestMintReceipt_MintFailureIsFatal() {
	s.expectAssociate(customer, nil)
	s.expectPublish()
	s.ledger.EXPECT().MintNFT(gomock.Any(), collection, gomock.Any()).
		Return(ledger.MintReceipt{}, &ledger.StatusError{Op: "mint", Status: "INVALID_SIGNATURE"})
	s.ledger.EXPECT().Transfer(gomock.Any(), gomock.Any()).Times(0)

	summary, err := s.service.MintReceipt(context.Background(), s.request(customer))

	s.Nil(summary)
	s.ErrorIs(err, models.ErrMint)
	s.Contains(err.Error(), "INVALID_SIGNATURE")
}

func (s *ServiceSuite) TestMintReceipt_OversizedPayloadIsNotSubmitted() {
	s.expectAssociate(customer, nil)
	long := "https://gateway.example/ipfs/" + strings.Repeat("Q", 100)
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Return(long, nil)
	s.ledger.EXPECT().MintNFT(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := s.service.MintReceipt(context.Background(), s.request(customer))

	s.ErrorIs(err, models.ErrMint)
	s.Contains(err.Error(), statusMetadataTooLong)
}

func (s *ServiceSuite) TestMintReceipt_UnexpectedSerialsAreAMintFailure() {
	s.expectAssociate(customer, nil)
	s.expectPublish()
	s.ledger.EXPECT().MintNFT(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(ledger.MintReceipt{Receipt: ledger.Receipt{Status: ledger.StatusSuccess}}, nil)

	_, err := s.service.MintReceipt(context.Background(), s.request(customer))

	s.ErrorIs(err, models.ErrMint)
}

func (s *ServiceSuite) TestMintReceipt_TransferFailureIsPartialSuccess() {
	s.service = s.newService(WithEventPublisher(s.events), WithLoyalty(s.loyalty))
	s.expectAssociate(customer, nil)
	s.expectPublish()
	s.expectMint(8)
	s.ledger.EXPECT().Transfer(gomock.Any(), gomock.Any()).
		Return(ledger.Receipt{}, &ledger.StatusError{Op: "transfer", Status: "TOKEN_NOT_ASSOCIATED_TO_ACCOUNT"})
	s.events.EXPECT().Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e models.ReceiptEvent) error {
			s.Equal(models.StatePartial, e.State)
			s.Equal("0.0.7002::8", e.ReceiptNFT)
			s.Equal(models.TxStatusTransferFailed, e.TransferStatus)
			return nil
		})
	s.loyalty.EXPECT().Earn(gomock.Any(), gomock.Any()).Times(0)

	summary, err := s.service.MintReceipt(context.Background(), s.request(customer))

	s.Require().NoError(err)
	s.Equal("0.0.7002::8", summary.ReceiptNFT)
	s.Equal("TRANSFER_FAILED", summary.TxStatus)
	s.Equal("Reward transfer failed", summary.Reward)
	s.True(summary.Result.Partial())
	s.ErrorIs(summary.Result.TransferErr, models.ErrTransfer)
	s.Contains(summary.Result.TransferErr.Error(), "TOKEN_NOT_ASSOCIATED_TO_ACCOUNT")
	s.False(summary.Result.Transfer.Executed)
}

func (s *ServiceSuite) TestMintReceipt_NotifiesCollaboratorsOnDelivery() {
	s.service = s.newService(WithEventPublisher(s.events), WithLoyalty(s.loyalty))
	s.expectAssociate(customer, nil)
	s.expectPublish()
	s.expectMint(9)
	s.ledger.EXPECT().Transfer(gomock.Any(), gomock.Any()).Return(ledger.Receipt{Status: ledger.StatusSuccess}, nil)
	s.events.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker unavailable"))
	s.loyalty.EXPECT().Earn(gomock.Any(), models.Earning{
		Account:    customer,
		ReceiptNFT: "0.0.7002::9",
		Total:      4.5,
		Merchant:   "Cafe X",
	}).Return(errors.New("loyalty down"))

	summary, err := s.service.MintReceipt(context.Background(), s.request(customer))
	s.service.Wait()

	s.Require().NoError(err)
	s.Equal("10 RECV", summary.Reward)
}

func (s *ServiceSuite) TestMintReceipt_DoesNotWaitForLoyalty() {
	s.service = s.newService(WithLoyalty(s.loyalty))
	s.expectAssociate(customer, nil)
	s.expectPublish()
	s.expectMint(10)
	s.ledger.EXPECT().Transfer(gomock.Any(), gomock.Any()).Return(ledger.Receipt{Status: ledger.StatusSuccess}, nil)

	release := make(chan struct{})
	notified := make(chan error, 1)
	s.loyalty.EXPECT().Earn(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ models.Earning) error {
			<-release
			_, bounded := ctx.Deadline()
			s.True(bounded)
			notified <- ctx.Err()
			return nil
		})

	ctx, cancel := context.WithCancel(context.Background())
	summary, err := s.service.MintReceipt(ctx, s.request(customer))
	cancel()

	s.Require().NoError(err)
	s.Equal("0.0.7002::10", summary.ReceiptNFT)

	close(release)
	s.service.Wait()
	s.NoError(<-notified, "notification outlives the request context")
}

// =============================================================================
// Association endpoint
// =============================================================================

func (s *ServiceSuite) TestAssociateTokens() {
	s.Run("missing account is a validation error", func() {
		_, err := s.service.AssociateTokens(context.Background(), " ")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("already associated succeeds", func() {
		s.expectAssociateBoth(customer, alreadyAssociated())
		tokens, err := s.service.AssociateTokens(context.Background(), "0.0.1001")
		s.Require().NoError(err)
		s.Equal([]ledger.TokenID{collection, rewardToken}, tokens)
	})

	s.Run("ledger failure is an upstream error", func() {
		s.expectAssociateBoth(customer, &ledger.StatusError{Op: "associate", Status: "INVALID_ACCOUNT_ID"})
		_, err := s.service.AssociateTokens(context.Background(), "0.0.1001")
		s.True(dErrors.HasCode(err, dErrors.CodeUpstream))
		s.ErrorIs(err, models.ErrAssociation)
	})
}

func (s *ServiceSuite) expectAssociateBoth(account ledger.AccountID, err error) {
	s.ledger.EXPECT().
		AssociateTokens(gomock.Any(), account, ledger.OperatorKey, []ledger.TokenID{collection, rewardToken}).
		Return(ledger.Receipt{}, err)
}

// =============================================================================
// Ownership listing
// =============================================================================

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func (s *ServiceSuite) TestListOwned_ResolvesEachItemIndependently() {
	nfts := []mirror.NFT{
		{TokenID: string(collection), SerialNumber: 9, CreatedTimestamp: "1714554000.000000009", Metadata: b64("https://gateway.example/ipfs/QmGood")},
		{TokenID: string(collection), SerialNumber: 7, CreatedTimestamp: "1714553000.000000007", Metadata: b64(`{"name":"inline"}`)},
		{TokenID: string(collection), SerialNumber: 5, Metadata: b64("https://gateway.example/ipfs/QmGone")},
		{TokenID: string(collection), SerialNumber: 4, Metadata: "%%%not-base64"},
		{TokenID: string(collection), SerialNumber: 2, Metadata: b64("plain words")},
	}
	s.index.EXPECT().ListNFTs(gomock.Any(), "0.0.1001", string(collection)).Return(nfts, nil)
	s.fetcher.EXPECT().Fetch(gomock.Any(), "https://gateway.example/ipfs/QmGood").
		Return(json.RawMessage(`{"name":"Receipt - Cafe X"}`), nil)
	s.fetcher.EXPECT().Fetch(gomock.Any(), "https://gateway.example/ipfs/QmGone").
		Return(nil, models.NewStageError(models.StageMetadataFetch, "404 Not Found", nil))

	listing, err := s.service.ListOwned(context.Background(), "0.0.1001")

	s.Require().NoError(err)
	s.Equal("0.0.1001", listing.Account)
	s.Require().Len(listing.Assets, 5)

	got := listing.Assets
	s.Equal([]int64{9, 7, 5, 4, 2}, []int64{got[0].Serial, got[1].Serial, got[2].Serial, got[3].Serial, got[4].Serial})

	s.Equal("https://gateway.example/ipfs/QmGood", got[0].MetadataURI)
	s.JSONEq(`{"name":"Receipt - Cafe X"}`, string(got[0].Metadata))
	s.Equal("1714554000.000000009", got[0].CreatedAt)

	s.Equal(`{"name":"inline"}`, got[1].MetadataURI)
	s.JSONEq(`{"name":"inline"}`, string(got[1].Metadata))

	s.Equal("https://gateway.example/ipfs/QmGone", got[2].MetadataURI)
	s.Nil(got[2].Metadata)

	s.Empty(got[3].MetadataURI)
	s.Nil(got[3].Metadata)

	s.Equal("plain words", got[4].MetadataURI)
	s.Nil(got[4].Metadata)
}

func (s *ServiceSuite) TestListOwned_NormalizesHexAddress() {
	s.index.EXPECT().ListNFTs(gomock.Any(), "0xabc", string(collection)).Return(nil, nil)

	listing, err := s.service.ListOwned(context.Background(), "0xABC")

	s.Require().NoError(err)
	s.Equal("0xabc", listing.Account)
	s.Equal("0xABC", listing.OriginalAccount)
	s.Equal(models.FormatAlternateHex, listing.Format)
	s.Empty(listing.Assets)
}

func (s *ServiceSuite) TestListOwned_IndexFailure() {
	apiErr := &mirror.APIError{StatusCode: 400, Messages: []string{"Invalid parameter"}}
	s.index.EXPECT().ListNFTs(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, models.NewStageError(models.StageIndexer, "Invalid parameter", apiErr))

	_, err := s.service.ListOwned(context.Background(), "0.0.1001")

	s.True(dErrors.HasCode(err, dErrors.CodeUpstream))
	s.ErrorIs(err, models.ErrIndexer)
	got, ok := mirror.AsAPIError(err)
	s.Require().True(ok)
	s.Equal(apiErr, got)
}

func (s *ServiceSuite) TestListOwned_ListingIsBounded() {
	s.index.EXPECT().ListNFTs(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _, _ string) ([]mirror.NFT, error) {
			deadline, ok := ctx.Deadline()
			s.True(ok)
			s.WithinDuration(time.Now().Add(time.Second), deadline, 100*time.Millisecond)
			return nil, nil
		})

	_, err := s.service.ListOwned(context.Background(), "0.0.1001")
	s.NoError(err)
}

func (s *ServiceSuite) TestListOwned_SlowGatewayIsCutOffByResolveTimeout() {
	s.service.resolver.resolveTimeout = 50 * time.Millisecond
	nfts := []mirror.NFT{
		{TokenID: string(collection), SerialNumber: 2, Metadata: b64("https://gateway.example/ipfs/QmSlow")},
		{TokenID: string(collection), SerialNumber: 1, Metadata: b64("https://gateway.example/ipfs/QmSlower")},
	}
	s.index.EXPECT().ListNFTs(gomock.Any(), gomock.Any(), gomock.Any()).Return(nfts, nil)
	s.fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).Times(2).
		DoAndReturn(func(ctx context.Context, _ string) (json.RawMessage, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})

	start := time.Now()
	listing, err := s.service.ListOwned(context.Background(), "0.0.1001")

	s.Require().NoError(err)
	s.Less(time.Since(start), time.Second)
	s.Require().Len(listing.Assets, 2)
	s.Nil(listing.Assets[0].Metadata)
	s.Nil(listing.Assets[1].Metadata)
	s.Equal("https://gateway.example/ipfs/QmSlow", listing.Assets[0].MetadataURI)
}

func (s *ServiceSuite) TestListOwned_EmptyAccount() {
	_, err := s.service.ListOwned(context.Background(), "")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}
