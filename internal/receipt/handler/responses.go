package handler

import (
	"receiptmint/internal/ledger"
	"receiptmint/internal/receipt/models"
)

const statusSuccess = "success"

// MintReceiptResponse is returned once a serial exists, delivered or not.
type MintReceiptResponse struct {
	Status        string                 `json:"status"`
	ReceiptNFT    string                 `json:"receiptNFT"`
	MetadataURL   string                 `json:"metadataUrl"`
	Metadata      models.ReceiptDocument `json:"metadata"`
	Reward        string                 `json:"reward"`
	TxStatus      string                 `json:"txStatus"`
	NFTViewURL    string                 `json:"nftViewUrl"`
	TestMode      bool                   `json:"testMode"`
	TransferError string                 `json:"transferError,omitempty"`
}

func fromSummary(s *models.MintSummary) MintReceiptResponse {
	resp := MintReceiptResponse{
		Status:      statusSuccess,
		ReceiptNFT:  s.ReceiptNFT,
		MetadataURL: s.MetadataURL,
		Reward:      s.Reward,
		TxStatus:    s.TxStatus,
		NFTViewURL:  s.NFTViewURL,
		TestMode:    s.TestMode,
	}
	if s.Result != nil {
		resp.Metadata = s.Result.Document
		if s.Result.TransferErr != nil {
			resp.TransferError = s.Result.TransferErr.Error()
		}
	}
	return resp
}

// AssociateTokensResponse lists the tokens the account may now hold.
type AssociateTokensResponse struct {
	Status string           `json:"status"`
	Tokens []ledger.TokenID `json:"tokens"`
}

// OwnedNFTsResponse is the ownership listing.
type OwnedNFTsResponse struct {
	Status          string                  `json:"status"`
	Account         string                  `json:"account"`
	OriginalAccount string                  `json:"originalAccount"`
	Count           int                     `json:"count"`
	NFTs            []models.OwnedAssetView `json:"nfts"`
}

func fromListing(l *models.OwnedListing) OwnedNFTsResponse {
	nfts := l.Assets
	if nfts == nil {
		nfts = []models.OwnedAssetView{}
	}
	return OwnedNFTsResponse{
		Status:          statusSuccess,
		Account:         l.Account,
		OriginalAccount: l.OriginalAccount,
		Count:           len(nfts),
		NFTs:            nfts,
	}
}
