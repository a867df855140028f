package proofs

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/require"

	"github.com/stake-dao/votemarket-relay/x/votemarket/header"
	"github.com/stake-dao/votemarket-relay/x/votemarket/l1"
)

// Shared fixtures for assembler and submission tests: a cancun-shaped
// header for block 21185919 plus well-formed trie nodes for the curve
// controller, the gauge weight slot and three user slots. The node
// contents are synthetic; the assembler does not walk the trie, it
// checks endpoint echoes and hands the bytes through.

var (
	testGauge      = common.HexToAddress("0x26F7786de3E6D9Bd37Fcf47BE6F2bC455a21b74A")
	testUser       = common.HexToAddress("0xa219712cc2AAa5Aa98cCF2a7ba055231f1752323")
	testController = common.HexToAddress("0x2F50D538606Fa9EDD2B11E2446BEb18C9D5846bB")

	// Derived slot keys for testGauge/testUser at testEpoch under the
	// curve layout, pinned independently in the slots package.
	curveWeightKey = common.HexToHash("0xe9381e71035575aeb4896cc09518420c4cd20e7200511543e4ccca47a11fce9d")
	curveUserKeys  = []common.Hash{
		common.HexToHash("0x8931f647167bd78be6ea23edfbcd192a8ccd745eb7068cec28997599fe86f09e"),
		common.HexToHash("0x981f7b7a0d72e6a5ecb84757c40a1ef7269575b0c02d6c6a9488bc6a01c5e53f"),
		common.HexToHash("0x981f7b7a0d72e6a5ecb84757c40a1ef7269575b0c02d6c6a9488bc6a01c5e541"),
	}
)

const (
	testEpoch uint64 = 1731542400
	testBlock uint64 = 21185919
)

const (
	fixtureHeaderRaw   = "0xf90252a01111111111111111111111111111111111111111111111111111111111111111a01dcc4de8dec75d7aab85b567b6ccd41ad312451b948a7413f0a142fd40d49347942222222222222222222222222222222222222222a03333333333333333333333333333333333333333333333333333333333333333a056e81f171bcc55a6ff8345e692c0f86e5b48e01b996cadc001622fb5e363b421a056e81f171bcc55a6ff8345e692c0f86e5b48e01b996cadc001622fb5e363b421b901000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000080840143457f8401c9c38083bc614e8467359ddf8a72656c61792d74657374a04444444444444444444444444444444444444444444444444444444444444444880000000000000000843b9aca00a056e81f171bcc55a6ff8345e692c0f86e5b48e01b996cadc001622fb5e363b4218302000080a05555555555555555555555555555555555555555555555555555555555555555"
	fixtureHeaderHash  = "0x2343d974bca198713509f9fb4843e5772171380c8ea0c69348f899750e25f32f"
	fixtureStorageRoot = "0xb53788b482472a41c061a035925dbf8647fe94edf1b6c3c78f339e66089ede05"
)

var fixtureAccountNodes = []string{
	"0xf90211a0a1f0b1af36bb423aa04d2c9dc95b3b6349ca1f5845c3fe43f9e4539332de7caca0761fe90810515cf6330973285c56360129bb28d6f571b4a9a677265aadc20ceca01dcae6895705cb7dfdeef2d597fa7105096181b111fae68f02c962ebc5033caea01a39fd90ab68ab52e5de3fcafdcd8d15215b539ddd98fa496b187404f864686ca0f630e4abcf251aaa9ca3a441ec7d98adc5649e1e8eaad7ebf77bdebb17e36d9ea07049dddde1d5b5d634aa765620e9a86042d66394af6b8a8b91d7bfa81017ee62a035434b17f9ba5754d5647e1702fa335206c1cbe74b3d4f78184425dd2ec79284a03b5a5aa8ee806d4a6d77841ec2913792a4d4266118c782d6467250704f7094aea0aa95ebf1c9bb9854a62f6485ec4df15db362836421b2818f66aed5aa449d9569a0fd4f6d68add01c574e4cb50d1cdec7472a4c82bb5220609232eb55d42bf199b9a00cd4553d4de3f04bcf98d0f88f6f7861ac1bcb6f99b32b45627702c3afd6a195a0a8995fb7b9331a46bf506a6eb2f6cc42314c244afaf403938e1b52d10bb712eca0c0d5445d7fba4ed4b005d4864a90e1a08cca00145fb379062fef9de4da24849da0dce4fc4e21313574407cdd0e2ad16a90889132113df8e2640a6dc2d2d4c5b794a01a7a3295f31d1c7a9793f4d6e25d0eaf236ee3552d010a3b3f5a426db73ebed1a0d074f48cb7d56a51ffe1dd9f0a5aa1532ddbe6985d7debd7fcb965c634fc787080",
	"0xf90211a0e08a0d53bfaa6d377e4a3b9652ff6c3f72a595e2399f467fad88d40b44794ef0a0e3809a28270f2561e6954c4a734c0f6d0da9d6bd30e76aafd34afc276975a741a0a9b8254d64b472c0c6d231c3071a78e6ea9d5eb67821f841e6873efbd262ebc3a0aabd9b6d4ec4e826ddda30fb7794a6f695f783086104bbf2c6a1f2c18cbbce0ea037aebe98e534f0dc4592e979d36382b5a3f4cd0cf6aaab58fa4fe2cdba02ba92a0e9f5a08b7d0cf9d71a02aaae6ec97efc825788f4c47e95fc16c089f894c50893a0a40ab2bbd40a2d50b1c6fedf156a008ef16ef2920639f933c729d60271b2fba6a067dca0e4e7d5af1c6637489777ec922dfde366603d685c8a36710a65af83038aa01509f2ad1c7968c3e42a2747b6f58bd3f1a4fc4ba23eacceb4b21053a1b7ce71a04bc134fcae9ff249fbb309098014aa788724404413ecc44ea2df29a16171bca3a0a656ee4ad93e804bd4b7b2b3a4d4d0172a810f7eeab025cf9a122f15e8be9dc9a056ee49d5f2c5713055718666a88111d01ad4fdc6bd648045b7d390bf8ff5afe7a0deb768cea4fcf7b22a4b88224646bff64940015caf04d2460f00736fa3e99bc5a0edf3dbff3a72d52a52bcc397c0eb160d4a72258d21811f6f605c6fee3b7f5527a041bc11435416bd7a1458bd920b9b337ccd714bf74af547f573148ed02bfa3beea05eebb7f377c56fe5a20bbec30a76d1cbcc99ef173da4d3ba428bcce4b42f119c80",
	"0xf871a02083783cbc0b771406e4d6858a198fb6b01bf08bfce5deab2fb0cebd459a77fcb84ef84c01880de0b6b3a7640000a0b53788b482472a41c061a035925dbf8647fe94edf1b6c3c78f339e66089ede05a0a6689fe1ca3be7be0f2074fe04abcb45b45094d7d821d1abebb4d01d518829f9",
}

var fixtureWeightNodes = []string{
	"0xf90211a03513c0e24117ddae123bed40f0782f1bf9c9f86448ff2b204d1a59ac8f300db1a01421de82942a174f64a4aadcc4d358e1a67f2940f8835fd920c243680ad83d80a064da85f807cb2b5085d79bce3315992bef9d4a2f2ab5c34ce9649a375ae11e6ca0fc23eee0d087d122877e5b0a89eb6ec30b23d3b90e845b5d51a23037cb21299fa0e8256837e9238889b98df742f7feb7463f791dc74eda03d2766084f97f9fcbb4a02afb30fec729465ffca4624adbb88ff1d68f6c10a70b6972b816ea8e284eec58a07aa554c4aea7bbb48ba9b67ba83c4fa7e6bc1b337c3aa5c994c429e9965b4ff3a010aa76a131f9972dd33da84d56233e1293db78eddd627123ec522bea3c33ab12a0f4563147db1bbae9fa80486d3197b2ad8b32f4d4c94b6a273d34bd31e59ab19ba083500c7e728112b015bf1b4b1e3658364b51612878815424a045a3a3d8f01375a04b2ea44c13d9277b41473977e2e6e2624bceeee33c38dd3dea9214ce219bcc6fa0a649baf54bfa4b8cca828db0c0cd5154b75727c40522a71840e9ad1029fbda5ba02977691a2dbbdcf39222faa5d17ec1fc3e4e408df6ca7d4e93429dd28202e383a00baae6a483232763126a35948230750e6e8f4a38f76de75a38bc58b97b6debfca0dcbf2dab1625b9afaf2a0fd53c3de31665877ad89589807d6b7be47a3b75640da0f11fc302526b46fe3be9c54b2261629bb79bfbfae73b9010bd15f4ae1633d82680",
	"0xefa020e3493faf7ed83b519873e0120edf297544f59b040d004ef90aa046acc404aa8d8caf85d6f1e3909d6866398115",
}

var fixtureUserNodes = [][]string{
	{
		"0xf90211a0572968f7df54d46c1994b589890181a0ce104065461cbc4e44faafaf72fdb396a071311f026e794e9709f5e933dc9f891dbec5fe828708b041e91257cb4ffd3e92a04b870fa3713740ccb1c4100d889440b6d7d966c8bd99807d1b6cee672821e10aa063300ad8f9dda56216fde7db462fa2a979f9b5a099e0fa8df1bb8e04f3ae8e29a0298adf6d9b596d677cb382a2134f748d005145019af9b6ba8e1134efd66ee4d2a095ce34d3ab728ddda45c2e7dea7c75846b28aa27fa695b83a4ea2f49b3834ae0a0f6807251fd0485b966f1785fb54f5ba83519d32e73be6cbf4055671e969b2530a05355c3eb641a3350a17192bb0347853c188b372bc70bc82f84d980c9fc11bee4a0b81886452a21d55d5e25beed550e764e104c3c4d3d1b59adba846b7543f79cbca06b2022c2263106a30a6419b3179f3b603c1781e2f979b795efb6ead29777f2a7a038de22561d2f470b68f3b9d9713dfe708bbcdc5563f0675697e469f46b3cb004a0884c8f3c52b922f468e5d3a99e40e5f3a95dec5465fd6dbc6a214787918936aca0989d9e4af1fe87bbb5bf27a08ec4decb4313d0a141df75e5e8ce7419d5a2ed62a0658b57c000497ab26efb582bbdbceb2b0f880f078fb93a1f96ed29f3f4622181a0e96eb8f12cf54e4c4173623dd369b2f9ba25503c93ad011065edcd8ad0e0cca2a0fcc2d9f7ab3b894debfe54141cffecc29ea5b13f94a28b423ae94a9e58682b4280",
		"0xe7a020f8731748ee823a1ca8b7226ebb58250b20885c4a6a7aad1d4537c9317aac0d858467353d80",
	},
	{
		"0xf90211a0e4506e810a43822e928b31a19581c85b40f287dba68823cf6027102b94e9c829a0a519b55e8eca973215851438e922a63d36e58bbae2c41dae8153ed2df1d022f6a06ef324aa122a7c844531f9b9d12383bbe7df6c316e13d29507a151d65a6f863ea0965f84c2b404c96e1077b22af92d9540b08d2c3a4086e9773f58b66a050a3e19a0f6c588c2b79bb18a4bb7484d014772a16c42986f541addd3d0e7f77a2ad3c5bba04896196b1c692ed3ad777cbaf9101fb7821d5fc28f7fa9310485ce5645c8c92ca05fe6552483b3bc507e49b62064913fcff9426652b53474d8695c32e678af31eaa0c2f764fb0912ed9b25d25d3f222b899e578846bd436f68c31a6886a4080af5a7a0f0fd6e931d78c92711c1671c29463791ce039f2a75fa59a7505ee3a68bfe66eba053c1aa15164a86bcde3dc388ab82d7d44228dc90bcc4e00731b6e8c1997b13b1a0ea49c6080782ab52ec726ed9dd089d8b41f87e631af5f4d714b4e99d4fc9be4ba04ebbb06d81ba0d7c1bc9e05b29b59f8449144b7b8566a3b83a930de1286c8cd5a0e4ffffa5066fabd2b821a077b28c143f1938470b9c66d61b2c93da0bb0a24588a05cfacbce2a5ac31bca83119300de90708bd76ffe40e2ed635c3a11427ff1d061a04d39df6b6e8c0555c03507875d3513f70186e0eefe30fa2ca17ae05725709883a05361df69a4d930d30ec847b4140c8618b92b93f5a1fd2aaca3c16e4e5cff3dc280",
		"0xeba02051f01699808858fea15db853e88d93f4bdcac2f8f5ab8728c6c4e88856e3888988ab54a98ceb1f0ad2",
	},
	{
		"0xf90211a0e6d2db1b0a3561ad5beece0cc5ab490681326d11b644c69adb29b22172361f5da0fb9ba014f83b794f032ce76f88e0ef5057773a1931ddd5ffbefaeeb30a024a5ba02b0a1352f3f95ff44872ff4ffae8f3a785f8f949e58182c7b76a4b954864e0c3a039afe8f49dabaa9b96a0ae89edce0cbba711c6728a7bcc0c0123a1130b7611dfa02c076cda5693118cd3d09b434ac8a214a481bb3d7338f3be29b740154b77f840a00e56f7921361703d58069664124ae71970017ac055caa165c49e12b945fa7be5a07570ea25082129efb285564e46e17ae6411765032a1cfd60bb9de94f55d8decda0e88a8fda110f4a3636bb207ffb0036e8b7f4730ddae8ae1185108a2e2c80647ba0f350c3d558a1d5ec450132b94ed0f85153056a88f0b2e0a40213426e932a513aa0fe3bfb9e4f57c3032a0a84365198b764980ff6fbf555ff000fa264bae8fdcd56a012899019f8a98d4cdc3c4b58e5b5f5a6ee1f0cc8910687922ed1e0b9e9522611a05d91a0632d1e6a1d3f167a94f2ae82eac7a3e90afce5c7a04f4a5400387083f2a0c28e20f4062d4007427069bc5034eea80248cb33cd67086347a3c30418bea449a03039ed734eafc2cd51b5601e25b9423bf2f35ae0ce295c746917f475770f9272a0e57c7e05f125afe3198160018fa5a3d026d935dfcb360397f5042005099a9695a04642f71c732e46708517d9fe5a816f1120cba90a797622570ce9636c1401c89c80",
		"0xe7a020463b4b23ad61fcfd7554dbabf9df92b1011049e7c0cc7396e90fb70e603787858469167100",
	},
}

// Expected submission payloads for the fixtures above, computed
// independently with a reference RLP encoder.
const (
	goldenControllerProof = "0xf9049bf90211a0a1f0b1af36bb423aa04d2c9dc95b3b6349ca1f5845c3fe43f9e4539332de7caca0761fe90810515cf6330973285c56360129bb28d6f571b4a9a677265aadc20ceca01dcae6895705cb7dfdeef2d597fa7105096181b111fae68f02c962ebc5033caea01a39fd90ab68ab52e5de3fcafdcd8d15215b539ddd98fa496b187404f864686ca0f630e4abcf251aaa9ca3a441ec7d98adc5649e1e8eaad7ebf77bdebb17e36d9ea07049dddde1d5b5d634aa765620e9a86042d66394af6b8a8b91d7bfa81017ee62a035434b17f9ba5754d5647e1702fa335206c1cbe74b3d4f78184425dd2ec79284a03b5a5aa8ee806d4a6d77841ec2913792a4d4266118c782d6467250704f7094aea0aa95ebf1c9bb9854a62f6485ec4df15db362836421b2818f66aed5aa449d9569a0fd4f6d68add01c574e4cb50d1cdec7472a4c82bb5220609232eb55d42bf199b9a00cd4553d4de3f04bcf98d0f88f6f7861ac1bcb6f99b32b45627702c3afd6a195a0a8995fb7b9331a46bf506a6eb2f6cc42314c244afaf403938e1b52d10bb712eca0c0d5445d7fba4ed4b005d4864a90e1a08cca00145fb379062fef9de4da24849da0dce4fc4e21313574407cdd0e2ad16a90889132113df8e2640a6dc2d2d4c5b794a01a7a3295f31d1c7a9793f4d6e25d0eaf236ee3552d010a3b3f5a426db73ebed1a0d074f48cb7d56a51ffe1dd9f0a5aa1532ddbe6985d7debd7fcb965c634fc787080f90211a0e08a0d53bfaa6d377e4a3b9652ff6c3f72a595e2399f467fad88d40b44794ef0a0e3809a28270f2561e6954c4a734c0f6d0da9d6bd30e76aafd34afc276975a741a0a9b8254d64b472c0c6d231c3071a78e6ea9d5eb67821f841e6873efbd262ebc3a0aabd9b6d4ec4e826ddda30fb7794a6f695f783086104bbf2c6a1f2c18cbbce0ea037aebe98e534f0dc4592e979d36382b5a3f4cd0cf6aaab58fa4fe2cdba02ba92a0e9f5a08b7d0cf9d71a02aaae6ec97efc825788f4c47e95fc16c089f894c50893a0a40ab2bbd40a2d50b1c6fedf156a008ef16ef2920639f933c729d60271b2fba6a067dca0e4e7d5af1c6637489777ec922dfde366603d685c8a36710a65af83038aa01509f2ad1c7968c3e42a2747b6f58bd3f1a4fc4ba23eacceb4b21053a1b7ce71a04bc134fcae9ff249fbb309098014aa788724404413ecc44ea2df29a16171bca3a0a656ee4ad93e804bd4b7b2b3a4d4d0172a810f7eeab025cf9a122f15e8be9dc9a056ee49d5f2c5713055718666a88111d01ad4fdc6bd648045b7d390bf8ff5afe7a0deb768cea4fcf7b22a4b88224646bff64940015caf04d2460f00736fa3e99bc5a0edf3dbff3a72d52a52bcc397c0eb160d4a72258d21811f6f605c6fee3b7f5527a041bc11435416bd7a1458bd920b9b337ccd714bf74af547f573148ed02bfa3beea05eebb7f377c56fe5a20bbec30a76d1cbcc99ef173da4d3ba428bcce4b42f119c80f871a02083783cbc0b771406e4d6858a198fb6b01bf08bfce5deab2fb0cebd459a77fcb84ef84c01880de0b6b3a7640000a0b53788b482472a41c061a035925dbf8647fe94edf1b6c3c78f339e66089ede05a0a6689fe1ca3be7be0f2074fe04abcb45b45094d7d821d1abebb4d01d518829f9"
	goldenPointData       = "0xf90247f90244f90211a03513c0e24117ddae123bed40f0782f1bf9c9f86448ff2b204d1a59ac8f300db1a01421de82942a174f64a4aadcc4d358e1a67f2940f8835fd920c243680ad83d80a064da85f807cb2b5085d79bce3315992bef9d4a2f2ab5c34ce9649a375ae11e6ca0fc23eee0d087d122877e5b0a89eb6ec30b23d3b90e845b5d51a23037cb21299fa0e8256837e9238889b98df742f7feb7463f791dc74eda03d2766084f97f9fcbb4a02afb30fec729465ffca4624adbb88ff1d68f6c10a70b6972b816ea8e284eec58a07aa554c4aea7bbb48ba9b67ba83c4fa7e6bc1b337c3aa5c994c429e9965b4ff3a010aa76a131f9972dd33da84d56233e1293db78eddd627123ec522bea3c33ab12a0f4563147db1bbae9fa80486d3197b2ad8b32f4d4c94b6a273d34bd31e59ab19ba083500c7e728112b015bf1b4b1e3658364b51612878815424a045a3a3d8f01375a04b2ea44c13d9277b41473977e2e6e2624bceeee33c38dd3dea9214ce219bcc6fa0a649baf54bfa4b8cca828db0c0cd5154b75727c40522a71840e9ad1029fbda5ba02977691a2dbbdcf39222faa5d17ec1fc3e4e408df6ca7d4e93429dd28202e383a00baae6a483232763126a35948230750e6e8f4a38f76de75a38bc58b97b6debfca0dcbf2dab1625b9afaf2a0fd53c3de31665877ad89589807d6b7be47a3b75640da0f11fc302526b46fe3be9c54b2261629bb79bfbfae73b9010bd15f4ae1633d82680efa020e3493faf7ed83b519873e0120edf297544f59b040d004ef90aa046acc404aa8d8caf85d6f1e3909d6866398115"
	goldenAccountData     = "0xf906c1f9023cf90211a0572968f7df54d46c1994b589890181a0ce104065461cbc4e44faafaf72fdb396a071311f026e794e9709f5e933dc9f891dbec5fe828708b041e91257cb4ffd3e92a04b870fa3713740ccb1c4100d889440b6d7d966c8bd99807d1b6cee672821e10aa063300ad8f9dda56216fde7db462fa2a979f9b5a099e0fa8df1bb8e04f3ae8e29a0298adf6d9b596d677cb382a2134f748d005145019af9b6ba8e1134efd66ee4d2a095ce34d3ab728ddda45c2e7dea7c75846b28aa27fa695b83a4ea2f49b3834ae0a0f6807251fd0485b966f1785fb54f5ba83519d32e73be6cbf4055671e969b2530a05355c3eb641a3350a17192bb0347853c188b372bc70bc82f84d980c9fc11bee4a0b81886452a21d55d5e25beed550e764e104c3c4d3d1b59adba846b7543f79cbca06b2022c2263106a30a6419b3179f3b603c1781e2f979b795efb6ead29777f2a7a038de22561d2f470b68f3b9d9713dfe708bbcdc5563f0675697e469f46b3cb004a0884c8f3c52b922f468e5d3a99e40e5f3a95dec5465fd6dbc6a214787918936aca0989d9e4af1fe87bbb5bf27a08ec4decb4313d0a141df75e5e8ce7419d5a2ed62a0658b57c000497ab26efb582bbdbceb2b0f880f078fb93a1f96ed29f3f4622181a0e96eb8f12cf54e4c4173623dd369b2f9ba25503c93ad011065edcd8ad0e0cca2a0fcc2d9f7ab3b894debfe54141cffecc29ea5b13f94a28b423ae94a9e58682b4280e7a020f8731748ee823a1ca8b7226ebb58250b20885c4a6a7aad1d4537c9317aac0d858467353d80f90240f90211a0e4506e810a43822e928b31a19581c85b40f287dba68823cf6027102b94e9c829a0a519b55e8eca973215851438e922a63d36e58bbae2c41dae8153ed2df1d022f6a06ef324aa122a7c844531f9b9d12383bbe7df6c316e13d29507a151d65a6f863ea0965f84c2b404c96e1077b22af92d9540b08d2c3a4086e9773f58b66a050a3e19a0f6c588c2b79bb18a4bb7484d014772a16c42986f541addd3d0e7f77a2ad3c5bba04896196b1c692ed3ad777cbaf9101fb7821d5fc28f7fa9310485ce5645c8c92ca05fe6552483b3bc507e49b62064913fcff9426652b53474d8695c32e678af31eaa0c2f764fb0912ed9b25d25d3f222b899e578846bd436f68c31a6886a4080af5a7a0f0fd6e931d78c92711c1671c29463791ce039f2a75fa59a7505ee3a68bfe66eba053c1aa15164a86bcde3dc388ab82d7d44228dc90bcc4e00731b6e8c1997b13b1a0ea49c6080782ab52ec726ed9dd089d8b41f87e631af5f4d714b4e99d4fc9be4ba04ebbb06d81ba0d7c1bc9e05b29b59f8449144b7b8566a3b83a930de1286c8cd5a0e4ffffa5066fabd2b821a077b28c143f1938470b9c66d61b2c93da0bb0a24588a05cfacbce2a5ac31bca83119300de90708bd76ffe40e2ed635c3a11427ff1d061a04d39df6b6e8c0555c03507875d3513f70186e0eefe30fa2ca17ae05725709883a05361df69a4d930d30ec847b4140c8618b92b93f5a1fd2aaca3c16e4e5cff3dc280eba02051f01699808858fea15db853e88d93f4bdcac2f8f5ab8728c6c4e88856e3888988ab54a98ceb1f0ad2f9023cf90211a0e6d2db1b0a3561ad5beece0cc5ab490681326d11b644c69adb29b22172361f5da0fb9ba014f83b794f032ce76f88e0ef5057773a1931ddd5ffbefaeeb30a024a5ba02b0a1352f3f95ff44872ff4ffae8f3a785f8f949e58182c7b76a4b954864e0c3a039afe8f49dabaa9b96a0ae89edce0cbba711c6728a7bcc0c0123a1130b7611dfa02c076cda5693118cd3d09b434ac8a214a481bb3d7338f3be29b740154b77f840a00e56f7921361703d58069664124ae71970017ac055caa165c49e12b945fa7be5a07570ea25082129efb285564e46e17ae6411765032a1cfd60bb9de94f55d8decda0e88a8fda110f4a3636bb207ffb0036e8b7f4730ddae8ae1185108a2e2c80647ba0f350c3d558a1d5ec450132b94ed0f85153056a88f0b2e0a40213426e932a513aa0fe3bfb9e4f57c3032a0a84365198b764980ff6fbf555ff000fa264bae8fdcd56a012899019f8a98d4cdc3c4b58e5b5f5a6ee1f0cc8910687922ed1e0b9e9522611a05d91a0632d1e6a1d3f167a94f2ae82eac7a3e90afce5c7a04f4a5400387083f2a0c28e20f4062d4007427069bc5034eea80248cb33cd67086347a3c30418bea449a03039ed734eafc2cd51b5601e25b9423bf2f35ae0ce295c746917f475770f9272a0e57c7e05f125afe3198160018fa5a3d026d935dfcb360397f5042005099a9695a04642f71c732e46708517d9fe5a816f1120cba90a797622570ce9636c1401c89c80e7a020463b4b23ad61fcfd7554dbabf9df92b1011049e7c0cc7396e90fb70e603787858469167100"
)

var (
	fixtureWeightValue = mustBig("54321678901234567890123456789")
	fixtureUserValues  = []*big.Int{
		big.NewInt(1731542400),
		mustBig("12345678901234567890"),
		big.NewInt(1763078400),
	}
)

func mustBig(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("bad big int literal: " + s)
	}
	return v
}

func decodeNodes(strs []string) [][]byte {
	out := make([][]byte, len(strs))
	for i, s := range strs {
		out[i] = hexutil.MustDecode(s)
	}
	return out
}

func fixtureHeader(t *testing.T) *header.Header {
	t.Helper()
	h, err := header.Decode(hexutil.MustDecode(fixtureHeaderRaw))
	require.NoError(t, err)
	require.Equal(t, common.HexToHash(fixtureHeaderHash), h.Hash)
	return h
}

// fixtureAccountResult mimics the first eth_getProof response: the
// controller account plus the weight slot.
func fixtureAccountResult() *l1.AccountResult {
	return &l1.AccountResult{
		Address:      testController,
		AccountProof: decodeNodes(fixtureAccountNodes),
		Balance:      big.NewInt(0),
		Nonce:        1,
		StorageHash:  common.HexToHash(fixtureStorageRoot),
		StorageProof: []l1.StorageResult{
			{Key: curveWeightKey, Value: new(big.Int).Set(fixtureWeightValue), Proof: decodeNodes(fixtureWeightNodes)},
		},
	}
}

// fixtureStorageResult mimics the second eth_getProof response: the
// voter's last-vote and slope slots.
func fixtureStorageResult() *l1.AccountResult {
	res := &l1.AccountResult{
		Address:      testController,
		AccountProof: decodeNodes(fixtureAccountNodes),
		Balance:      big.NewInt(0),
		Nonce:        1,
		StorageHash:  common.HexToHash(fixtureStorageRoot),
	}
	for i, key := range curveUserKeys {
		res.StorageProof = append(res.StorageProof, l1.StorageResult{
			Key:   key,
			Value: new(big.Int).Set(fixtureUserValues[i]),
			Proof: decodeNodes(fixtureUserNodes[i]),
		})
	}
	return res
}

func fixtureBundle(t *testing.T) *Bundle {
	t.Helper()
	user := testUser
	b := &Bundle{
		Request: Request{
			Protocol:    "curve",
			Gauge:       testGauge,
			User:        &user,
			Epoch:       testEpoch,
			BlockNumber: testBlock,
		},
		Epoch:        testEpoch,
		BlockNumber:  testBlock,
		Header:       fixtureHeader(t),
		AccountProof: decodeNodes(fixtureAccountNodes),
		StorageHash:  common.HexToHash(fixtureStorageRoot),
		WeightProof: StorageProof{
			Key:   curveWeightKey,
			Value: new(big.Int).Set(fixtureWeightValue),
			Nodes: decodeNodes(fixtureWeightNodes),
		},
	}
	for i, key := range curveUserKeys {
		b.UserProofs = append(b.UserProofs, StorageProof{
			Key:   key,
			Value: new(big.Int).Set(fixtureUserValues[i]),
			Nodes: decodeNodes(fixtureUserNodes[i]),
		})
	}
	return b
}
